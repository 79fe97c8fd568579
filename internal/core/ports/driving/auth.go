package driving

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// AuthStatus describes the cached sign-in state.
type AuthStatus struct {
	SignedIn bool
	Account  *domain.Account
	// Credential is the cached credential, nil when signed out.
	Credential *domain.Credential
}

// AuthService manages the signed-in account.
type AuthService interface {
	// Login acquires a credential, prompting for a device grant when the
	// cache cannot be used silently.
	Login(ctx context.Context) (*domain.Credential, error)

	// Logout removes the cached credential.
	Logout(ctx context.Context) error

	// Status reports what the cache holds without contacting the provider.
	Status(ctx context.Context) (AuthStatus, error)
}
