package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// Config keys for the TOML store.
const (
	KeyTenantID          = "auth.tenant_id"
	KeyClientID          = "auth.client_id"
	KeyAuthority         = "auth.authority"
	KeyScopes            = "auth.scopes"
	KeyPersistRefresh    = "auth.persist_refresh"
	KeyWorkbookPath      = "workbook.path"
	KeyWorkbookBackend   = "workbook.backend"
	KeyCellMap           = "workbook.cellmap"
	KeyGraphBaseURL      = "graph.base_url"
	KeyRequestsPerSecond = "graph.requests_per_second"
	KeyHistoryDSN        = "history.dsn"
)

// Environment variables that override the file.
const (
	EnvTenantID     = "CSWCALC_TENANT_ID"
	EnvClientID     = "CSWCALC_CLIENT_ID"
	EnvWorkbookPath = "CSWCALC_WORKBOOK_PATH"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindFloat
	kindList
)

var knownKeys = map[string]keyKind{
	KeyTenantID:          kindString,
	KeyClientID:          kindString,
	KeyAuthority:         kindString,
	KeyScopes:            kindList,
	KeyPersistRefresh:    kindBool,
	KeyWorkbookPath:      kindString,
	KeyWorkbookBackend:   kindString,
	KeyCellMap:           kindString,
	KeyGraphBaseURL:      kindString,
	KeyRequestsPerSecond: kindFloat,
	KeyHistoryDSN:        kindString,
}

// ConfigService resolves configuration from the store and the environment.
type ConfigService struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// NewConfigService creates a new config service reading the process
// environment.
func NewConfigService(store driven.ConfigStore) *ConfigService {
	return &ConfigService{store: store, getenv: os.Getenv}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *ConfigService) WithEnv(getenv func(string) string) *ConfigService {
	s.getenv = getenv
	return s
}

// Resolve builds the configuration without validating it.
func (s *ConfigService) Resolve() *domain.Config {
	cfg := &domain.Config{
		TenantID:          s.override(EnvTenantID, s.store.GetString(KeyTenantID)),
		ClientID:          s.override(EnvClientID, s.store.GetString(KeyClientID)),
		WorkbookPath:      s.override(EnvWorkbookPath, s.store.GetString(KeyWorkbookPath)),
		Backend:           domain.Backend(s.getString(KeyWorkbookBackend, string(domain.BackendGraph))),
		GraphBaseURL:      s.getString(KeyGraphBaseURL, domain.DefaultGraphBaseURL),
		AuthorityHost:     s.getString(KeyAuthority, domain.DefaultAuthorityHost),
		Scopes:            s.store.GetStringSlice(KeyScopes),
		PersistRefresh:    s.store.GetBool(KeyPersistRefresh),
		HistoryDSN:        s.store.GetString(KeyHistoryDSN),
		CellMapPath:       s.store.GetString(KeyCellMap),
		RequestsPerSecond: s.store.GetFloat(KeyRequestsPerSecond),
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = domain.DefaultRequestsPerSecond
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = domain.DefaultScopes()
	}
	return cfg
}

// Load builds the configuration and validates it. A *domain.ConfigurationError
// lists every offending name.
func (s *ConfigService) Load() (*domain.Config, error) {
	cfg := s.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Values returns every stored key with its value.
func (s *ConfigService) Values() []driving.ConfigValue {
	keys := s.store.Keys()
	sort.Strings(keys)
	values := make([]driving.ConfigValue, 0, len(keys))
	for _, k := range keys {
		v, _ := s.store.Get(k)
		values = append(values, driving.ConfigValue{Key: k, Value: v})
	}
	return values
}

// Set parses value for the key's type and stores it. An empty value
// deletes the key.
func (s *ConfigService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return s.store.Delete(key)
	}

	var typed any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindList:
		parts := strings.Split(value, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		typed = list
	default:
		typed = value
	}

	if key == KeyWorkbookBackend && !domain.Backend(value).IsValid() {
		return fmt.Errorf("%w: backend must be %q or %q", domain.ErrInvalidInput, domain.BackendGraph, domain.BackendXLSX)
	}

	if err := s.store.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// KnownKeys lists the keys Set accepts, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *ConfigService) override(env, fallback string) string {
	if v := strings.TrimSpace(s.getenv(env)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func (s *ConfigService) getString(key, defaultVal string) string {
	if v := strings.TrimSpace(s.store.GetString(key)); v != "" {
		return v
	}
	return defaultVal
}
