package push

import "errors"

var ErrUnknownMode = errors.New("unknown mode")
