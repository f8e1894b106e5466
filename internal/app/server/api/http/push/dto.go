package push

import (
	"medsync/internal/domain/push"
)

type validateInput struct {
	Body push.Request
}

type validateOutput struct {
	Body *push.Response
}
