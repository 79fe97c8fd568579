package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

const testGUID = "0b7a1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d"

func noEnv(string) string { return "" }

func TestConfigService_Load_Defaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyTenantID:     testGUID,
		KeyClientID:     testGUID,
		KeyWorkbookPath: testWorkbookPath,
	})

	cfg, err := NewConfigService(store).WithEnv(noEnv).Load()

	require.NoError(t, err)
	assert.Equal(t, domain.BackendGraph, cfg.Backend)
	assert.Equal(t, domain.DefaultGraphBaseURL, cfg.GraphBaseURL)
	assert.Equal(t, domain.DefaultRequestsPerSecond, cfg.RequestsPerSecond)
	assert.Equal(t, domain.DefaultScopes(), cfg.Scopes)
}

func TestConfigService_Load_EnvOverrides(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{KeyTenantID: "bad"})
	env := map[string]string{
		EnvTenantID:     testGUID,
		EnvClientID:     testGUID,
		EnvWorkbookPath: "/drives/abc/root:/x.xlsx",
	}

	cfg, err := NewConfigService(store).WithEnv(func(k string) string { return env[k] }).Load()

	require.NoError(t, err)
	assert.Equal(t, testGUID, cfg.TenantID)
	assert.Equal(t, "/drives/abc/root:/x.xlsx", cfg.WorkbookPath)
}

func TestConfigService_Load_ListsOffendingNames(t *testing.T) {
	_, err := NewConfigService(memory.NewConfigStore()).WithEnv(noEnv).Load()

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{domain.ConfigTenantID, domain.ConfigClientID, domain.ConfigWorkbookPath}, cfgErr.Names)
}

func TestConfigService_Set_ParsesTypes(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewConfigService(store).WithEnv(noEnv)

	require.NoError(t, svc.Set(KeyPersistRefresh, "true"))
	require.NoError(t, svc.Set(KeyRequestsPerSecond, "2.5"))
	require.NoError(t, svc.Set(KeyScopes, "User.Read, Files.ReadWrite.All"))
	require.NoError(t, svc.Set(KeyWorkbookBackend, "xlsx"))

	assert.True(t, store.GetBool(KeyPersistRefresh))
	assert.Equal(t, 2.5, store.GetFloat(KeyRequestsPerSecond))
	assert.Equal(t, []string{"User.Read", "Files.ReadWrite.All"}, store.GetStringSlice(KeyScopes))

	values := svc.Values()
	require.Len(t, values, 4)
	assert.Equal(t, KeyPersistRefresh, values[0].Key)
}

func TestConfigService_Set_Rejects(t *testing.T) {
	svc := NewConfigService(memory.NewConfigStore())

	assert.True(t, errors.Is(svc.Set("unknown.key", "x"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(svc.Set(KeyPersistRefresh, "maybe"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(svc.Set(KeyRequestsPerSecond, "-1"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(svc.Set(KeyWorkbookBackend, "ftp"), domain.ErrInvalidInput))
}

func TestConfigService_Set_EmptyDeletes(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{KeyHistoryDSN: "memory://"})

	require.NoError(t, NewConfigService(store).Set(KeyHistoryDSN, ""))

	_, ok := store.Get(KeyHistoryDSN)
	assert.False(t, ok)
}

func TestKnownKeys(t *testing.T) {
	keys := KnownKeys()

	assert.Contains(t, keys, KeyTenantID)
	assert.IsIncreasing(t, keys)
}
