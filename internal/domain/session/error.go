package session

import "errors"

var ErrInvalidHeartbeat = errors.New("invalid heartbeat")
