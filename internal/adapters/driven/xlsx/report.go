package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// Report sheet names.
const (
	InputsSheet  = "Inputs"
	ResultsSheet = "Results"
)

// WriteReport saves an estimate as a two-sheet workbook at path.
func WriteReport(path string, est *domain.Estimate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InputsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ResultsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	inputs := [][]any{{"Field", "Value"}}
	for _, field := range domain.AllInputFields() {
		v, err := est.Inputs.Value(field)
		if err != nil {
			return err
		}
		inputs = append(inputs, []any{field.Label(), v})
	}
	if err := writeTable(f, InputsSheet, inputs, bold); err != nil {
		return err
	}

	results := [][]any{{"Result", "Value", "Cell"}}
	for _, r := range est.Results {
		results = append(results, []any{r.Label, r.Value.Raw(), r.Address})
	}
	results = append(results,
		[]any{},
		[]any{"Estimate", est.ID},
		[]any{"Created", est.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		[]any{"Document", est.Document.String()},
	)
	if err := writeTable(f, ResultsSheet, results, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "A", 32)
}
