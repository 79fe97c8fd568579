// Package postgres provides a PostgreSQL estimate history for shared
// deployments.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

const (
	defaultTableName = "cswcalc_estimates"
	operationTimeout = 5 * time.Second
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// Ensure EstimateStore implements the interface.
var _ driven.EstimateStore = (*EstimateStore)(nil)

// EstimateStore keeps estimates in a PostgreSQL table. The connection and
// the table are created on first use.
type EstimateStore struct {
	dsn       string
	tableName string
	openDB    sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// NewEstimateStore creates a store for dsn, e.g. postgres://user@host/db.
func NewEstimateStore(dsn string) (*EstimateStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, domain.ErrInvalidInput
	}
	return &EstimateStore{
		dsn:       dsn,
		tableName: defaultTableName,
		openDB:    sql.Open,
	}, nil
}

// Save stores or replaces an estimate.
func (s *EstimateStore) Save(ctx context.Context, e domain.Estimate) error {
	if e.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	inputs, err := json.Marshal(e.Inputs)
	if err != nil {
		return fmt.Errorf("marshalling inputs: %w", err)
	}
	results, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, backend, drive_id, item_id, inputs, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET backend = EXCLUDED.backend, drive_id = EXCLUDED.drive_id,
			item_id = EXCLUDED.item_id, inputs = EXCLUDED.inputs,
			results = EXCLUDED.results, created_at = EXCLUDED.created_at`, quoteIdentifier(s.tableName))
	_, err = s.db.ExecContext(ctx, query, e.ID, e.Backend, e.Document.DriveID, e.Document.ItemID,
		string(inputs), string(results), e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving estimate: %w", err)
	}
	return nil
}

// Get retrieves an estimate by ID.
func (s *EstimateStore) Get(ctx context.Context, id string) (*domain.Estimate, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, backend, drive_id, item_id, inputs, results, created_at
		FROM %s WHERE id = $1`, quoteIdentifier(s.tableName))
	return scanEstimate(s.db.QueryRowContext(ctx, query, id))
}

// List returns estimates newest first.
func (s *EstimateStore) List(ctx context.Context, limit int) ([]domain.Estimate, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, backend, drive_id, item_id, inputs, results, created_at
		FROM %s ORDER BY created_at DESC, id DESC`, quoteIdentifier(s.tableName))
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var estimates []domain.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, *e)
	}
	return estimates, rows.Err()
}

// Close closes the connection if one was opened.
func (s *EstimateStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *EstimateStore) ensureReady(ctx context.Context) error {
	s.initOnce.Do(func() {
		db, err := s.openDB("postgres", s.dsn)
		if err != nil {
			s.initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(ctx, operationTimeout)
		defer cancel()

		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				backend TEXT NOT NULL DEFAULT '',
				drive_id TEXT NOT NULL DEFAULT '',
				item_id TEXT NOT NULL DEFAULT '',
				inputs JSONB NOT NULL,
				results JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`, quoteIdentifier(s.tableName))
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			s.initErr = err
			return
		}
		s.db = db
	})
	if s.initErr != nil {
		return fmt.Errorf("postgres history: %w", s.initErr)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEstimate(row scanner) (*domain.Estimate, error) {
	var e domain.Estimate
	var inputs, results []byte
	if err := row.Scan(&e.ID, &e.Backend, &e.Document.DriveID, &e.Document.ItemID,
		&inputs, &results, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning estimate: %w", err)
	}
	if err := json.Unmarshal(inputs, &e.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshalling inputs: %w", err)
	}
	if err := json.Unmarshal(results, &e.Results); err != nil {
		return nil, fmt.Errorf("unmarshalling results: %w", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func quoteIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
