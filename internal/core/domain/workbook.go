package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DocumentRef is a resolved workbook. It is immutable once resolved.
type DocumentRef struct {
	DriveID string `json:"drive_id"`
	ItemID  string `json:"item_id"`
}

// IsZero reports whether the reference has not been resolved.
func (r DocumentRef) IsZero() bool {
	return r.DriveID == "" && r.ItemID == ""
}

// String returns drive/item for logs.
func (r DocumentRef) String() string {
	return r.DriveID + "/" + r.ItemID
}

// SessionHandle identifies a server-side editing session.
type SessionHandle struct {
	ID string
	// Persist records whether edits are saved when the session closes.
	Persist bool
}

// CellAddress locates a range inside a workbook.
type CellAddress struct {
	// Sheet is the worksheet name, e.g. "Office".
	Sheet string
	// Range is an A1-style range, e.g. "C18" or "C1:BA100".
	Range string
}

// String returns the Sheet!Range form.
func (a CellAddress) String() string {
	if a.Sheet == "" {
		return a.Range
	}
	return a.Sheet + "!" + a.Range
}

// ParseCellAddress splits "Sheet!A1" into its parts. A bare range gets
// defaultSheet. A sheet prefix on the range always wins.
func ParseCellAddress(s, defaultSheet string) (CellAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellAddress{}, fmt.Errorf("%w: empty cell address", ErrInvalidInput)
	}
	if i := strings.LastIndex(s, "!"); i >= 0 {
		sheet := strings.Trim(s[:i], "'")
		rng := s[i+1:]
		if sheet == "" || rng == "" {
			return CellAddress{}, fmt.Errorf("%w: malformed cell address %q", ErrInvalidInput, s)
		}
		return CellAddress{Sheet: sheet, Range: rng}, nil
	}
	if defaultSheet == "" {
		return CellAddress{}, fmt.Errorf("%w: cell address %q has no sheet", ErrInvalidInput, s)
	}
	return CellAddress{Sheet: defaultSheet, Range: s}, nil
}

// CalculationType selects how much of the dependency graph is recomputed.
type CalculationType string

// Calculation types accepted by the workbook API.
const (
	CalculationFull        CalculationType = "Full"
	CalculationRecalculate CalculationType = "Recalculate"
	CalculationFullRebuild CalculationType = "FullRebuild"
)

// IsValid returns true if the calculation type is recognised.
func (c CalculationType) IsValid() bool {
	switch c {
	case CalculationFull, CalculationRecalculate, CalculationFullRebuild:
		return true
	default:
		return false
	}
}

// Grid is a rectangular block of cell values as returned by a range read.
// Rows may be ragged; missing cells read as nil.
type Grid [][]any

// At returns the value at row r, column c, or nil when out of range.
func (g Grid) At(r, c int) any {
	if r < 0 || r >= len(g) {
		return nil
	}
	row := g[r]
	if c < 0 || c >= len(row) {
		return nil
	}
	return row[c]
}

// IsEmpty reports whether the grid has no rows or only blank cells.
func (g Grid) IsEmpty() bool {
	for _, row := range g {
		for _, v := range row {
			if !isBlank(v) {
				return false
			}
		}
	}
	return true
}

// CellValue is the result of reading one cell. A cell with no data is
// empty, which is distinct from a zero value.
type CellValue struct {
	raw     any
	present bool
}

// ValueOf wraps a scalar read from a cell. Nil and "" are empty.
func ValueOf(v any) CellValue {
	if isBlank(v) {
		return CellValue{}
	}
	return CellValue{raw: v, present: true}
}

// EmptyCell is the explicit absent marker.
func EmptyCell() CellValue {
	return CellValue{}
}

// IsEmpty reports whether the cell held no data.
func (v CellValue) IsEmpty() bool {
	return !v.present
}

// Raw returns the underlying value, nil when empty.
func (v CellValue) Raw() any {
	return v.raw
}

// Float returns the value as a number when it is one (or a numeric string).
func (v CellValue) Float() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

// String renders the value for display; empty cells render as "".
func (v CellValue) String() string {
	if !v.present {
		return ""
	}
	return FormatScalar(v.raw)
}

// FormatScalar renders a cell scalar without float noise.
func FormatScalar(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprint(n)
	}
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	default:
		return false
	}
}

// MarshalJSON encodes an empty cell as null.
func (v CellValue) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON decodes null as an empty cell.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}
