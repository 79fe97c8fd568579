package services

import (
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory/memorytest"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

const testWorkbookPath = "/me/drive/root:/CSW/savings.xlsx"

// newTestWorkbook seeds the default layout: a lookup table and a total
// savings formula depending on the CSW area.
func newTestWorkbook() *memorytest.Workbook {
	w := memorytest.NewWorkbook(testWorkbookPath)
	w.SetCell("Lists!C1", "Texas")
	w.SetCell("Lists!D1", "Ohio")
	w.SetCell("Lists!C2", "Dallas")
	w.SetCell("Lists!C3", "Austin")
	w.SetCell("Lists!D2", "Columbus")
	w.SetFormula("Office!F36", func(get func(string) any) any {
		area, _ := get("Office!F27").(float64)
		rate, _ := get("Office!C27").(float64)
		return area * rate
	})
	return w
}

func newTestEstimator(w *memorytest.Workbook, opts ...EstimatorOption) *Estimator {
	locator := NewDocumentLocator(w, testWorkbookPath)
	return NewEstimator(NewWorkbook(w, locator), domain.DefaultCellMap(), opts...)
}

func validTestInputs() domain.EstimateInputs {
	return domain.EstimateInputs{
		Location: domain.LocationInputs{State: "Texas", City: "Dallas"},
		Building: domain.BuildingInputs{
			HVACSystem:       domain.HVACSystemChoices[1],
			HeatingFuel:      "Electric",
			CoolingInstalled: "Yes",
			ExistingWindow:   "Single pane",
			CSWType:          "Double",
		},
		Usage: domain.UsageInputs{BuildingArea: 80000, Floors: 4, OperatingHours: 3000, CSWArea: 5000},
		Rates: domain.RateInputs{ElectricRate: 0.1},
	}
}
