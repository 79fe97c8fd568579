package xlsx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Ensure Workbook implements the interface.
var _ driven.WorkbookClient = (*Workbook)(nil)

// DriveID marks documents resolved from the local filesystem.
const DriveID = "local"

type session struct {
	file    *excelize.File
	persist bool
	// calculated is cleared by every write; formula cells read their
	// stored value until the next Calculate.
	calculated bool
}

// Workbook opens local workbook files. A session is an open file handle;
// persisting sessions save the file on close.
type Workbook struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewWorkbook creates a local workbook client.
func NewWorkbook() *Workbook {
	return &Workbook{sessions: make(map[string]*session)}
}

// ResolveItem checks that path names an existing .xlsx file.
func (w *Workbook) ResolveItem(_ context.Context, path string) (domain.DocumentRef, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.DocumentRef{}, &domain.NotFoundError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return domain.DocumentRef{}, &domain.NotFoundError{Path: path, Err: err}
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(abs), ".xlsx") {
		return domain.DocumentRef{}, &domain.NotFoundError{Path: path, Err: errors.New("not an .xlsx file")}
	}
	return domain.DocumentRef{DriveID: DriveID, ItemID: abs}, nil
}

// CreateSession opens the file.
func (w *Workbook) CreateSession(_ context.Context, doc domain.DocumentRef, persist bool) (domain.SessionHandle, error) {
	f, err := excelize.OpenFile(doc.ItemID)
	if err != nil {
		return domain.SessionHandle{}, &domain.SessionError{Op: "create", Err: err}
	}
	id := uuid.NewString()

	w.mu.Lock()
	w.sessions[id] = &session{file: f, persist: persist}
	w.mu.Unlock()

	logger.Debug("xlsx: opened %s (session %s, persist=%v)", doc.ItemID, id, persist)
	return domain.SessionHandle{ID: id, Persist: persist}, nil
}

// CloseSession saves the file when the session persists, then closes it.
func (w *Workbook) CloseSession(_ context.Context, _ domain.DocumentRef, h domain.SessionHandle) error {
	w.mu.Lock()
	s, ok := w.sessions[h.ID]
	delete(w.sessions, h.ID)
	w.mu.Unlock()
	if !ok {
		return &domain.SessionError{Op: "close", Err: domain.ErrSessionClosed}
	}

	var saveErr error
	if s.persist {
		saveErr = s.file.Save()
	}
	closeErr := s.file.Close()
	if err := errors.Join(saveErr, closeErr); err != nil {
		return &domain.SessionError{Op: "close", Err: err}
	}
	return nil
}

// PatchRange writes values starting at the range's top-left cell.
func (w *Workbook) PatchRange(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	addr domain.CellAddress, values domain.Grid,
) error {
	s, err := w.session(h, "write", addr)
	if err != nil {
		return err
	}
	col, row, _, _, err := bounds(addr.Range)
	if err != nil {
		return domain.NewCellAccessError("write", addr.String(), http.StatusBadRequest, err.Error(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for r, line := range values {
		for c, v := range line {
			name, err := excelize.CoordinatesToCellName(col+c, row+r)
			if err != nil {
				return domain.NewCellAccessError("write", addr.String(), http.StatusBadRequest, err.Error(), err)
			}
			if err := s.file.SetCellValue(addr.Sheet, name, v); err != nil {
				return fileError("write", addr, err)
			}
		}
	}
	s.calculated = false
	return nil
}

// GetRange reads a range. Numeric cells are returned as float64 and text
// cells as strings; a range with no data returns an empty grid.
func (w *Workbook) GetRange(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	addr domain.CellAddress,
) (domain.Grid, error) {
	s, err := w.session(h, "read", addr)
	if err != nil {
		return nil, err
	}
	c1, r1, c2, r2, err := bounds(addr.Range)
	if err != nil {
		return nil, domain.NewCellAccessError("read", addr.String(), http.StatusBadRequest, err.Error(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	grid := make(domain.Grid, 0, r2-r1+1)
	hasData := false
	for r := r1; r <= r2; r++ {
		row := make([]any, 0, c2-c1+1)
		for c := c1; c <= c2; c++ {
			name, _ := excelize.CoordinatesToCellName(c, r)
			v, err := readCell(s, addr.Sheet, name)
			if err != nil {
				return nil, fileError("read", addr, err)
			}
			if v != "" {
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

// Calculate marks formula cells for evaluation on the next read.
func (w *Workbook) Calculate(
	_ context.Context, _ domain.DocumentRef, h domain.SessionHandle,
	calcType domain.CalculationType,
) error {
	s, err := w.session(h, "recalculate", domain.CellAddress{})
	if err != nil {
		return err
	}
	if !calcType.IsValid() {
		return domain.NewCellAccessError("recalculate", "", http.StatusBadRequest, "invalid calculationType", nil)
	}
	w.mu.Lock()
	s.calculated = true
	w.mu.Unlock()
	return nil
}

func (w *Workbook) session(h domain.SessionHandle, op string, addr domain.CellAddress) (*session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[h.ID]
	if !ok {
		return nil, domain.NewCellAccessError(op, addr.String(), http.StatusNotFound, "session not found", domain.ErrSessionClosed)
	}
	return s, nil
}

// readCell returns a cell's value: float64 for numeric cells and formula
// results that are numbers, bool for boolean cells, the text otherwise.
// Blank cells read as "".
func readCell(s *session, sheet, cell string) (any, error) {
	if s.calculated {
		formula, err := s.file.GetCellFormula(sheet, cell)
		if err != nil {
			return nil, err
		}
		if formula != "" {
			text, err := s.file.CalcCellValue(sheet, cell)
			if err != nil {
				return nil, err
			}
			return number(text), nil
		}
	}

	text, err := s.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil || text == "" {
		return "", err
	}
	typ, err := s.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		return number(text), nil
	case excelize.CellTypeBool:
		return text == "1" || strings.EqualFold(text, "true"), nil
	default:
		return text, nil
	}
}

// number parses finite numeric text. Anything else stays text.
func number(text string) any {
	if text == "" {
		return ""
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return text
	}
	return f
}

func fileError(op string, addr domain.CellAddress, err error) error {
	status := http.StatusBadRequest
	var missing excelize.ErrSheetNotExist
	if errors.As(err, &missing) {
		status = http.StatusNotFound
	}
	return domain.NewCellAccessError(op, addr.String(), status, err.Error(), err)
}

func bounds(rng string) (c1, r1, c2, r2 int, err error) {
	first, last, found := strings.Cut(rng, ":")
	if c1, r1, err = excelize.CellNameToCoordinates(first); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range %q: %w", rng, err)
	}
	if !found {
		return c1, r1, c1, r1, nil
	}
	if c2, r2, err = excelize.CellNameToCoordinates(last); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range %q: %w", rng, err)
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return c1, r1, c2, r2, nil
}
