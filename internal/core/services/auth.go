package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService signs the user in and out.
type AuthService struct {
	provider driven.TokenProvider
	cache    driven.CredentialCache
}

// NewAuthService creates a new auth service.
func NewAuthService(provider driven.TokenProvider, cache driven.CredentialCache) *AuthService {
	return &AuthService{provider: provider, cache: cache}
}

// Login acquires a credential through the token provider.
func (s *AuthService) Login(ctx context.Context) (*domain.Credential, error) {
	if s.provider == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.provider.Acquire(ctx)
}

// Logout clears the credential cache.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.cache == nil {
		return domain.ErrNotImplemented
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential cache: %w", err)
	}
	return nil
}

// Status reads the cache without contacting the identity provider.
func (s *AuthService) Status(ctx context.Context) (driving.AuthStatus, error) {
	if s.cache == nil {
		return driving.AuthStatus{}, domain.ErrNotImplemented
	}
	data, err := s.cache.Load(ctx)
	if err != nil {
		return driving.AuthStatus{}, fmt.Errorf("load credential cache: %w", err)
	}
	cache, _ := domain.DeserializeTokenCache(data)
	if !cache.HasAccount() {
		return driving.AuthStatus{}, nil
	}
	return driving.AuthStatus{
		SignedIn:   true,
		Account:    cache.Account,
		Credential: cache.Credential,
	}, nil
}
