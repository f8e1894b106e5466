// Package apierr переводит ошибки доменного слоя в ответы huma.
package apierr

import (
	"github.com/danielgtaylor/huma/v2"

	"medsync/internal/domain/errs"
)

// FromDomain ошибки запроса и ненастроенные коллекции - 400, остальное - 500.
// Частичный результат при ошибке не отдается.
func FromDomain(err error) error {
	switch errs.KindOf(err) {
	case errs.KindNone:
		return nil
	case errs.KindRequest, errs.KindUnconfigured:
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
