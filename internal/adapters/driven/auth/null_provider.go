package auth

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is for backends that require no authentication, such
// as a local .xlsx workbook.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider for no-auth backends.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string since no authentication is needed.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}

// Acquire returns an empty credential that never expires.
func (p *NullTokenProvider) Acquire(_ context.Context) (*domain.Credential, error) {
	return &domain.Credential{}, nil
}
