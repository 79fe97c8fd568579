// Package storage selects the estimate history backend from a DSN.
package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// OpenHistory returns the estimate store named by dsn:
//
//	""                       the default SQLite store
//	memory://                in-process only
//	postgres://...           PostgreSQL
//	sqlite:///path/to/db     a separate SQLite file
//	/path/to/db              same as sqlite://
func OpenHistory(dsn string, defaultStore *sqlite.Store) (driven.EstimateStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if defaultStore == nil {
			return nil, fmt.Errorf("%w: no default history store", domain.ErrInvalidInput)
		}
		return defaultStore.EstimateStore(), nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: history dsn: %v", domain.ErrInvalidInput, err)
	}
	switch scheme := strings.ToLower(parsed.Scheme); scheme {
	case "", "file", "sqlite":
		path := parsed.Path
		if path == "" {
			path = parsed.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("%w: history dsn %q has no path", domain.ErrInvalidInput, dsn)
		}
		store, err := sqlite.OpenFile(path)
		if err != nil {
			return nil, err
		}
		return store.EstimateStore(), nil
	case "memory", "mem":
		return memory.NewEstimateStore(), nil
	case "postgres", "postgresql":
		return postgres.NewEstimateStore(dsn)
	default:
		return nil, fmt.Errorf("%w: history backend %s", domain.ErrUnsupportedType, scheme)
	}
}
