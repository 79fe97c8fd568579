// Package memorytest provides an in-memory workbook for tests. It honours
// the session protocol so services and adapters can run the full cell
// pipeline without a network or a real file.
package memorytest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure Workbook implements the interface.
var _ driven.WorkbookClient = (*Workbook)(nil)

// Workbook operations recorded in Calls.
const (
	OpResolve   = "resolve"
	OpCreate    = "create_session"
	OpClose     = "close_session"
	OpPatch     = "patch"
	OpGet       = "get"
	OpCalculate = "calculate"
)

// Call is one recorded workbook call.
type Call struct {
	Op      string
	Address string
	Session string
}

// Formula computes a cell from the session's current cells.
type Formula func(get func(addr string) any) any

type session struct {
	persist bool
	cells   map[string]any
}

// Workbook is an in-memory document implementing the workbook protocol.
// Each session edits a private copy of the cells that is merged back on
// close when the session persists. Formula cells only change on Calculate.
type Workbook struct {
	mu       sync.Mutex
	path     string
	ref      domain.DocumentRef
	cells    map[string]any
	formulas map[string]Formula
	sessions map[string]*session
	nextID   int
	calls    []Call
	failures map[string]error
	peak     int
}

// NewWorkbook creates a workbook reachable at path.
func NewWorkbook(path string) *Workbook {
	return &Workbook{
		path:     path,
		ref:      domain.DocumentRef{DriveID: "memory", ItemID: strings.TrimPrefix(path, "/")},
		cells:    make(map[string]any),
		formulas: make(map[string]Formula),
		sessions: make(map[string]*session),
		failures: make(map[string]error),
	}
}

// SetCell seeds a value, e.g. SetCell("Lists!C1", "Texas").
func (w *Workbook) SetCell(addr string, v any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cells[addr] = v
}

// Cell returns a persisted value.
func (w *Workbook) Cell(addr string) any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cells[addr]
}

// SetFormula makes addr a computed cell.
func (w *Workbook) SetFormula(addr string, f Formula) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.formulas[addr] = f
}

// FailOn makes the next matching call fail with err. address may be empty
// to match any address.
func (w *Workbook) FailOn(op, address string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[op+"|"+address] = err
}

// Calls returns the recorded calls in order.
func (w *Workbook) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.calls...)
}

// Count returns how many calls of op were made.
func (w *Workbook) Count(op string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// PeakOpenSessions returns the most sessions ever open at once.
func (w *Workbook) PeakOpenSessions() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.peak
}

// OpenSessions returns the number of sessions not yet closed.
func (w *Workbook) OpenSessions() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sessions)
}

// ResolveItem returns the document when path matches.
func (w *Workbook) ResolveItem(_ context.Context, path string) (domain.DocumentRef, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpResolve, path, "")
	if err := w.failure(OpResolve, path); err != nil {
		return domain.DocumentRef{}, err
	}
	if path != w.path {
		return domain.DocumentRef{}, &domain.NotFoundError{Path: path}
	}
	return w.ref, nil
}

// CreateSession opens a session over a copy of the cells.
func (w *Workbook) CreateSession(_ context.Context, doc domain.DocumentRef, persist bool) (domain.SessionHandle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpCreate, "", "")
	if err := w.failure(OpCreate, ""); err != nil {
		return domain.SessionHandle{}, &domain.SessionError{Op: "create", Err: err}
	}
	if doc != w.ref {
		return domain.SessionHandle{}, &domain.SessionError{Op: "create", Err: domain.ErrNotFound}
	}

	w.nextID++
	id := fmt.Sprintf("session-%d", w.nextID)
	cells := make(map[string]any, len(w.cells))
	for k, v := range w.cells {
		cells[k] = v
	}
	w.sessions[id] = &session{persist: persist, cells: cells}
	w.peak = max(w.peak, len(w.sessions))
	return domain.SessionHandle{ID: id, Persist: persist}, nil
}

// CloseSession merges persisted edits and forgets the session.
func (w *Workbook) CloseSession(_ context.Context, _ domain.DocumentRef, h domain.SessionHandle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpClose, "", h.ID)
	s, ok := w.sessions[h.ID]
	delete(w.sessions, h.ID)
	if err := w.failure(OpClose, ""); err != nil {
		return err
	}
	if !ok {
		return &domain.SessionError{Op: "close", Err: domain.ErrSessionClosed}
	}
	if s.persist {
		w.cells = s.cells
	}
	return nil
}

// PatchRange writes a grid starting at the range's top-left cell.
func (w *Workbook) PatchRange(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	addr domain.CellAddress, values domain.Grid,
) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpPatch, addr.String(), h.ID)
	s, err := w.session(OpPatch, "write", addr, h)
	if err != nil {
		return err
	}

	col, row, err := topLeft(addr.Range)
	if err != nil {
		return domain.NewCellAccessError("write", addr.String(), http.StatusBadRequest, err.Error(), nil)
	}
	for r, line := range values {
		for c, v := range line {
			name, _ := excelize.CoordinatesToCellName(col+c, row+r)
			key := addr.Sheet + "!" + name
			if _, isFormula := w.formulas[key]; isFormula {
				continue
			}
			s.cells[key] = v
		}
	}
	return nil
}

// GetRange returns the cells of a range. A range with no data returns an
// empty grid.
func (w *Workbook) GetRange(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	addr domain.CellAddress,
) (domain.Grid, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpGet, addr.String(), h.ID)
	s, err := w.session(OpGet, "read", addr, h)
	if err != nil {
		return nil, err
	}

	c1, r1, c2, r2, err := bounds(addr.Range)
	if err != nil {
		return nil, domain.NewCellAccessError("read", addr.String(), http.StatusBadRequest, err.Error(), nil)
	}

	grid := make(domain.Grid, 0, r2-r1+1)
	hasData := false
	for r := r1; r <= r2; r++ {
		row := make([]any, 0, c2-c1+1)
		for c := c1; c <= c2; c++ {
			name, _ := excelize.CoordinatesToCellName(c, r)
			v := s.cells[addr.Sheet+"!"+name]
			if v == nil {
				v = ""
			} else {
				hasData = true
			}
			row = append(row, v)
		}
		grid = append(grid, row)
	}
	if !hasData {
		return domain.Grid{}, nil
	}
	return grid, nil
}

// Calculate evaluates every formula against the session's cells.
func (w *Workbook) Calculate(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	calcType domain.CalculationType,
) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record(OpCalculate, string(calcType), h.ID)
	s, err := w.session(OpCalculate, "recalculate", domain.CellAddress{}, h)
	if err != nil {
		return err
	}
	if !calcType.IsValid() {
		return domain.NewCellAccessError("recalculate", "", http.StatusBadRequest, "invalid calculationType", nil)
	}
	get := func(addr string) any { return s.cells[addr] }
	for addr, f := range w.formulas {
		s.cells[addr] = f(get)
	}
	return nil
}

func (w *Workbook) session(callOp, op string, addr domain.CellAddress, h domain.SessionHandle) (*session, error) {
	if err := w.failure(callOp, addr.String()); err != nil {
		return nil, err
	}
	s, ok := w.sessions[h.ID]
	if !ok {
		return nil, domain.NewCellAccessError(op, addr.String(), http.StatusNotFound, "session not found", nil)
	}
	return s, nil
}

func (w *Workbook) record(op, address, sessionID string) {
	w.calls = append(w.calls, Call{Op: op, Address: address, Session: sessionID})
}

// failure pops an injected error for op at address, or for op at any address.
func (w *Workbook) failure(op, address string) error {
	for _, key := range []string{op + "|" + address, op + "|"} {
		if err, ok := w.failures[key]; ok {
			delete(w.failures, key)
			return err
		}
	}
	return nil
}

func topLeft(rng string) (col, row int, err error) {
	c1, r1, _, _, err := bounds(rng)
	return c1, r1, err
}

func bounds(rng string) (c1, r1, c2, r2 int, err error) {
	first, last, found := strings.Cut(rng, ":")
	if c1, r1, err = excelize.CellNameToCoordinates(first); err != nil {
		return 0, 0, 0, 0, err
	}
	if !found {
		return c1, r1, c1, r1, nil
	}
	if c2, r2, err = excelize.CellNameToCoordinates(last); err != nil {
		return 0, 0, 0, 0, err
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return c1, r1, c2, r2, nil
}
