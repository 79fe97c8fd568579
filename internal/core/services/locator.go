package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// DocumentLocator resolves the workbook path once and caches the reference
// until Invalidate.
type DocumentLocator struct {
	client driven.WorkbookClient
	path   string

	mu  sync.Mutex
	ref *domain.DocumentRef
}

// NewDocumentLocator creates a locator for path.
func NewDocumentLocator(client driven.WorkbookClient, path string) *DocumentLocator {
	return &DocumentLocator{client: client, path: path}
}

// Path returns the logical path being resolved.
func (l *DocumentLocator) Path() string {
	return l.path
}

// Resolve returns the cached reference, looking it up on first use.
func (l *DocumentLocator) Resolve(ctx context.Context) (domain.DocumentRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ref != nil {
		return *l.ref, nil
	}

	logger.Debug("resolving workbook %s", l.path)
	ref, err := l.client.ResolveItem(ctx, l.path)
	if err != nil {
		if passThrough(err) {
			return domain.DocumentRef{}, err
		}
		return domain.DocumentRef{}, &domain.NotFoundError{Path: l.path, Err: err}
	}
	logger.Debug("resolved workbook to %s", ref)
	l.ref = &ref
	return ref, nil
}

// Invalidate forgets the cached reference. The next Resolve looks it up again.
func (l *DocumentLocator) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ref = nil
}

// passThrough reports whether a resolve failure keeps its own type. Sign-in
// and cancellation failures must not read as a missing workbook.
func passThrough(err error) bool {
	var nf *domain.NotFoundError
	var auth *domain.AuthenticationError
	switch {
	case errors.As(err, &nf), errors.As(err, &auth):
		return true
	case errors.Is(err, domain.ErrAuthInProgress):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
