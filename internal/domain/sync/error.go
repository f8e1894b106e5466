package sync

import "errors"

var (
	ErrMissingIdentity = errors.New("deviceId and userId are required")
	ErrBadTimestamp    = errors.New("invalid lastSyncTimestamp")
)
