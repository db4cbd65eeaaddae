// Package service holds the catalog's business rules. Services receive the
// caller's handle from the HTTP boundary and never decode credentials.
package service

import (
	"context"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repository"
)

// IdentityResolver maps caller handles to users.
type IdentityResolver struct {
	users repository.UserRepository
}

func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// ResolveByHandle returns the user whose username is handle, or IDENTITY_NOT_FOUND.
func (r *IdentityResolver) ResolveByHandle(ctx context.Context, handle string) (*models.User, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, models.NewIdentityNotFoundError(handle)
	}
	user, err := r.users.GetByUsername(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewIdentityNotFoundError(handle)
	}
	return user, nil
}

// ResolveAdministrative returns the admin with the lowest id, or NOT_FOUND.
func (r *IdentityResolver) ResolveAdministrative(ctx context.Context) (*models.User, error) {
	admin, err := r.users.FirstAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, models.NewNotFoundMessage("No administrative user exists")
	}
	return admin, nil
}
