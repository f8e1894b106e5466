package notify

import "errors"

var (
	ErrMalformedEvent   = errors.New("malformed event payload")
	ErrUnresolvedTarget = errors.New("document or collection id cannot be resolved")
)
