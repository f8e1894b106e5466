package sync

import (
	"medsync/internal/domain/sync"
)

type pullInput struct {
	Body sync.Request
}

type pullOutput struct {
	Body *sync.Response
}
