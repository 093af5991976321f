// Package auth exposes the identity-provider contract consumed by the sync
// engines. Credential flows live outside this module; only the current
// user's opaque id crosses the boundary.
package auth

import (
	"context"

	"github.com/reserveit/engine/internal/app/models"
)

// UserProvider yields the id of the currently signed-in user.
// Implementations return models.ErrNotAuthenticated when no user is bound.
type UserProvider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Static binds a fixed user id, or no user at all when the id is empty.
// Hosts wrap their real identity provider instead.
type Static struct {
	UserID string
}

func (s Static) CurrentUserID(ctx context.Context) (string, error) {
	if s.UserID == "" {
		return "", models.ErrNotAuthenticated
	}
	return s.UserID, nil
}
