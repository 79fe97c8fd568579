package driving

import "github.com/custodia-labs/cswcalc/internal/core/domain"

// ConfigService resolves and edits application configuration.
type ConfigService interface {
	// Load builds the effective configuration (file, then environment) and
	// validates it.
	Load() (*domain.Config, error)

	// Values returns every stored key with its value, sorted by key.
	Values() []ConfigValue

	// Set stores one key. Unknown keys are rejected.
	Set(key, value string) error
}

// ConfigValue is one stored configuration entry.
type ConfigValue struct {
	Key   string
	Value any
}
