package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "cswcalc.db"

// Store is the SQLite database behind the credential cache and the
// estimate history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store in dataDir.
// If dataDir is empty, defaults to ~/.cswcalc/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cswcalc", "data")
	}
	return OpenFile(filepath.Join(dataDir, DatabaseFile))
}

// OpenFile opens or creates the database at path, creating its directory.
func OpenFile(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CredentialCache returns a CredentialCache backed by this store.
func (s *Store) CredentialCache() driven.CredentialCache {
	return &credentialCache{store: s}
}

// EstimateStore returns an EstimateStore backed by this store. Closing it
// closes the shared database.
func (s *Store) EstimateStore() driven.EstimateStore {
	return &estimateStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// =============================================================================
// CredentialCache Implementation
// =============================================================================

type credentialCache struct {
	store *Store
}

var _ driven.CredentialCache = (*credentialCache)(nil)

// Load returns the cached bytes, or nil when the cache is empty.
func (c *credentialCache) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := c.store.db.QueryRowContext(ctx, "SELECT data FROM credential_cache WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential cache: %w", err)
	}
	return data, nil
}

// Save replaces the cached bytes.
func (c *credentialCache) Save(ctx context.Context, data []byte) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO credential_cache (id, data, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, data, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving credential cache: %w", err)
	}
	return nil
}

// Clear empties the cache.
func (c *credentialCache) Clear(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM credential_cache"); err != nil {
		return fmt.Errorf("clearing credential cache: %w", err)
	}
	return nil
}

// =============================================================================
// EstimateStore Implementation
// =============================================================================

type estimateStore struct {
	store *Store
}

var _ driven.EstimateStore = (*estimateStore)(nil)

// Save stores or replaces an estimate.
func (s *estimateStore) Save(ctx context.Context, e domain.Estimate) error {
	if e.ID == "" {
		return domain.ErrInvalidInput
	}

	inputsJSON, err := json.Marshal(e.Inputs)
	if err != nil {
		return fmt.Errorf("marshalling inputs: %w", err)
	}
	resultsJSON, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO estimates
			(id, state, city, backend, drive_id, item_id, inputs, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			city = excluded.city,
			backend = excluded.backend,
			drive_id = excluded.drive_id,
			item_id = excluded.item_id,
			inputs = excluded.inputs,
			results = excluded.results,
			created_at = excluded.created_at
	`, e.ID, e.Inputs.Location.State, e.Inputs.Location.City, e.Backend,
		e.Document.DriveID, e.Document.ItemID,
		string(inputsJSON), string(resultsJSON), e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving estimate: %w", err)
	}
	return nil
}

// Get retrieves an estimate by ID.
func (s *estimateStore) Get(ctx context.Context, id string) (*domain.Estimate, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, backend, drive_id, item_id, inputs, results, created_at
		FROM estimates WHERE id = ?
	`, id)
	return scanEstimate(row)
}

// List returns estimates newest first.
func (s *estimateStore) List(ctx context.Context, limit int) ([]domain.Estimate, error) {
	query := `
		SELECT id, backend, drive_id, item_id, inputs, results, created_at
		FROM estimates ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estimates: %w", err)
	}
	return estimates, nil
}

// Close closes the shared database.
func (s *estimateStore) Close() error {
	return s.store.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanEstimate scans a single estimate row.
func scanEstimate(row scanner) (*domain.Estimate, error) {
	var e domain.Estimate
	var inputsJSON, resultsJSON string
	var createdAt int64

	if err := row.Scan(&e.ID, &e.Backend, &e.Document.DriveID, &e.Document.ItemID,
		&inputsJSON, &resultsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning estimate: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &e.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshalling inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &e.Results); err != nil {
		return nil, fmt.Errorf("unmarshalling results: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return &e, nil
}
