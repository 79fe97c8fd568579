package driven

import "context"

// CredentialCache persists the serialized token cache across invocations.
// It stores opaque bytes; interpreting them is the token provider's job.
type CredentialCache interface {
	// Load returns the stored bytes, or nil when nothing is stored.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored bytes.
	Save(ctx context.Context, data []byte) error

	// Clear removes the stored bytes.
	Clear(ctx context.Context) error
}
