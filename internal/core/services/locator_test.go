package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory/memorytest"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

func TestDocumentLocator_ResolvesOnce(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkbook()
	locator := NewDocumentLocator(w, testWorkbookPath)

	first, err := locator.Resolve(ctx)
	require.NoError(t, err)
	second, err := locator.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, w.Count(memorytest.OpResolve))
}

func TestDocumentLocator_Invalidate(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkbook()
	locator := NewDocumentLocator(w, testWorkbookPath)

	_, err := locator.Resolve(ctx)
	require.NoError(t, err)
	locator.Invalidate()
	_, err = locator.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, w.Count(memorytest.OpResolve))
}

func TestDocumentLocator_NotFound(t *testing.T) {
	locator := NewDocumentLocator(newTestWorkbook(), "/me/drive/root:/missing.xlsx")

	_, err := locator.Resolve(context.Background())

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "/me/drive/root:/missing.xlsx", nf.Path)
}

func TestDocumentLocator_TransportErrorIsNotFound(t *testing.T) {
	w := newTestWorkbook()
	w.FailOn(memorytest.OpResolve, "", errors.New("403 forbidden"))
	locator := NewDocumentLocator(w, testWorkbookPath)

	_, err := locator.Resolve(context.Background())

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestDocumentLocator_SignInFailuresPassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"authentication", &domain.AuthenticationError{Description: "AADSTS70000: grant expired"}},
		{"in progress", fmt.Errorf("token: %w", domain.ErrAuthInProgress)},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkbook()
			w.FailOn(memorytest.OpResolve, "", tt.err)
			locator := NewDocumentLocator(w, testWorkbookPath)

			_, err := locator.Resolve(context.Background())

			require.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, domain.ErrNotFound)

			_, err = locator.Resolve(context.Background())
			require.NoError(t, err, "failures are not cached")
		})
	}
}
