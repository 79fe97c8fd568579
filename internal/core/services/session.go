package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Workbook opens editing sessions on the located document.
type Workbook struct {
	client  driven.WorkbookClient
	locator *DocumentLocator
}

// NewWorkbook creates a session factory.
func NewWorkbook(client driven.WorkbookClient, locator *DocumentLocator) *Workbook {
	return &Workbook{client: client, locator: locator}
}

// Locator returns the document locator.
func (w *Workbook) Locator() *DocumentLocator {
	return w.locator
}

// Open resolves the document and opens a session on it. persist selects
// whether edits are saved when the session closes. The caller must Close
// the session.
func (w *Workbook) Open(ctx context.Context, persist bool) (*Session, error) {
	doc, err := w.locator.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("opening session on %s (persist=%t)", doc, persist)
	handle, err := w.client.CreateSession(ctx, doc, persist)
	if err != nil {
		var se *domain.SessionError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &domain.SessionError{Op: "create", Err: err}
	}
	logger.Debug("session %s open", logger.Redact(handle.ID))

	return &Session{client: w.client, doc: doc, handle: handle}, nil
}

// WithSession opens a session, runs fn and closes the session on every
// exit path. A close failure never replaces the error from fn.
func (w *Workbook) WithSession(ctx context.Context, persist bool, fn func(*Session) error) error {
	s, err := w.Open(ctx, persist)
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(s)
}

// Session is one open editing session. Cell operations are sequential;
// writes followed by Recalculate are visible to later reads.
type Session struct {
	client driven.WorkbookClient
	doc    domain.DocumentRef
	handle domain.SessionHandle

	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// Document returns the document the session edits.
func (s *Session) Document() domain.DocumentRef {
	return s.doc
}

// Handle returns the session handle.
func (s *Session) Handle() domain.SessionHandle {
	return s.handle
}

// Write stores one scalar at addr.
func (s *Session) Write(ctx context.Context, addr domain.CellAddress, value any) error {
	if err := s.checkOpen("write", addr); err != nil {
		return err
	}
	logger.Debug("write %s = %v", addr, value)
	err := s.client.PatchRange(ctx, s.doc, s.handle, addr, domain.Grid{{value}})
	return cellError("write", addr, err)
}

// Read returns the scalar at addr, or an empty value when the range holds
// no data.
func (s *Session) Read(ctx context.Context, addr domain.CellAddress) (domain.CellValue, error) {
	if err := s.checkOpen("read", addr); err != nil {
		return domain.EmptyCell(), err
	}
	grid, err := s.client.GetRange(ctx, s.doc, s.handle, addr)
	if err != nil {
		return domain.EmptyCell(), cellError("read", addr, err)
	}
	v := domain.ValueOf(grid.At(0, 0))
	logger.Debug("read %s = %s", addr, v)
	return v, nil
}

// Recalculate forces a full recomputation of the workbook.
func (s *Session) Recalculate(ctx context.Context) error {
	if err := s.checkOpen("recalculate", domain.CellAddress{}); err != nil {
		return err
	}
	logger.Debug("recalculate (%s)", domain.CalculationFull)
	err := s.client.Calculate(ctx, s.doc, s.handle, domain.CalculationFull)
	return cellError("recalculate", domain.CellAddress{}, err)
}

// ReadOptions reads a lookup range and builds its options index.
func (s *Session) ReadOptions(ctx context.Context, addr domain.CellAddress) (domain.OptionsIndex, error) {
	if err := s.checkOpen("read", addr); err != nil {
		return domain.NewOptionsIndex(), err
	}
	grid, err := s.client.GetRange(ctx, s.doc, s.handle, addr)
	if err != nil {
		return domain.NewOptionsIndex(), cellError("read", addr, err)
	}
	index := domain.BuildOptionsIndex(grid)
	logger.Debug("read %d option categories from %s", index.Len(), addr)
	return index, nil
}

// Close ends the session. It runs once; later calls do nothing. Failures
// are logged and swallowed since the session may already have expired.
func (s *Session) Close(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		// Close even when the caller's context is already done.
		ctx = context.WithoutCancel(ctx)
		if err := s.client.CloseSession(ctx, s.doc, s.handle); err != nil {
			logger.Warn("close session on %s: %v", s.doc, err)
			return
		}
		logger.Debug("session closed")
	})
}

func (s *Session) checkOpen(op string, addr domain.CellAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &domain.CellAccessError{Op: op, Address: addr.String(), Err: domain.ErrSessionClosed}
	}
	return nil
}

func cellError(op string, addr domain.CellAddress, err error) error {
	if err == nil {
		return nil
	}
	var ce *domain.CellAccessError
	if errors.As(err, &ce) {
		return err
	}
	return &domain.CellAccessError{Op: op, Address: addr.String(), Err: err}
}
