package driven

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations try the cache silently first and only fall back to an
// interactive grant when that fails.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)

	// Acquire returns the full credential. It fails with
	// *domain.AuthenticationError when neither path succeeds.
	Acquire(ctx context.Context) (*domain.Credential, error)
}
