package permission

import (
	"context"
)

// IdentityRepository поиск данных пользователя
type IdentityRepository interface {
	FindByID(ctx context.Context, userID string) (*Identity, error)
}
