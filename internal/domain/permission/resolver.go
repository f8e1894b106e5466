package permission

import (
	"context"

	"golang.org/x/exp/slog"
)

// Resolverer интерфейс определения области доступа
type Resolverer interface {
	Resolve(ctx context.Context, userID, facilityHint string) Scope
}

// Resolver определяет область доступа по данным пользователя
type Resolver struct {
	repo        IdentityRepository
	globalRoles map[string]struct{}
	log         *slog.Logger
}

// NewResolver создает резолвер. globalRoles - роли с доступом ко всем учреждениям.
func NewResolver(repo IdentityRepository, globalRoles []string, log *slog.Logger) *Resolver {
	roles := make(map[string]struct{}, len(globalRoles))
	for _, r := range globalRoles {
		roles[r] = struct{}{}
	}
	return &Resolver{
		repo:        repo,
		globalRoles: roles,
		log:         log.With("component", "permission_resolver"),
	}
}

// Resolve никогда не возвращает ошибку: при сбое поиска выдается минимальная область
func (r *Resolver) Resolve(ctx context.Context, userID, facilityHint string) Scope {
	identity, err := r.repo.FindByID(ctx, userID)
	if err != nil {
		r.log.Warn("identity lookup failed, using least-privileged scope",
			"user_id", userID, "error", err)
		return Scope{
			Role:       RoleUnknown,
			FacilityID: optional(facilityHint),
		}
	}

	facility := identity.FacilityID
	if facility == "" {
		facility = facilityHint
	}

	_, global := r.globalRoles[identity.Role]
	return Scope{
		Role:                   identity.Role,
		FacilityID:             optional(facility),
		CanAccessAllFacilities: global,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
