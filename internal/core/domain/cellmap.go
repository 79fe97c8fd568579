package domain

import "fmt"

// Default workbook layout.
const (
	DefaultInputSheet   = "Office"
	DefaultOptionsSheet = "Lists"
	DefaultOptionsRange = "C1:BA100"
)

// InputBinding ties an input field to the cell it is written to.
type InputBinding struct {
	Field   InputField
	Address CellAddress
}

// OutputBinding ties a computed result to the cell it is read from.
type OutputBinding struct {
	Key     string
	Label   string
	Address CellAddress
}

// CellMap is the integration contract between this program and the
// workbook layout. Inputs are written in slice order.
type CellMap struct {
	Inputs  []InputBinding
	Outputs []OutputBinding
	// Options is the lookup range holding states (row 0) and their cities.
	Options CellAddress
}

// DefaultCellMap returns the layout of the CSW savings workbook.
func DefaultCellMap() CellMap {
	in := func(f InputField, cell string) InputBinding {
		return InputBinding{Field: f, Address: CellAddress{Sheet: DefaultInputSheet, Range: cell}}
	}
	out := func(key, label, cell string) OutputBinding {
		return OutputBinding{Key: key, Label: label, Address: CellAddress{Sheet: DefaultInputSheet, Range: cell}}
	}
	return CellMap{
		Inputs: []InputBinding{
			in(FieldState, "C18"),
			in(FieldCity, "C19"),
			in(FieldHVACSystem, "F20"),
			in(FieldHeatingFuel, "F21"),
			in(FieldCoolingInstalled, "F22"),
			in(FieldExistingWindow, "F24"),
			in(FieldCSWType, "F26"),
			in(FieldBuildingArea, "F18"),
			in(FieldFloors, "F19"),
			in(FieldOperatingHours, "F23"),
			in(FieldCSWArea, "F27"),
			in(FieldElectricRate, "C27"),
			in(FieldGasRate, "C28"),
		},
		Outputs: []OutputBinding{
			out("hdd", "Location HDD", "C23"),
			out("cdd", "Location CDD", "C24"),
			out("window_wall_ratio", "Est. Window Wall Ratio", "F28"),
			out("electric_savings", "Electric Savings", "F31"),
			out("gas_savings", "Gas Savings", "F33"),
			out("eui_savings", "EUI Savings", "E14"),
			out("electric_cost_savings", "Electric Cost Savings", "C35"),
			out("gas_cost_savings", "Gas Cost Savings", "C36"),
			out("total_savings", "Total Savings", "F36"),
		},
		Options: CellAddress{Sheet: DefaultOptionsSheet, Range: DefaultOptionsRange},
	}
}

// Validate checks that every input field is bound exactly once and that
// outputs have unique keys and addresses.
func (m CellMap) Validate() error {
	bound := make(map[InputField]bool, len(m.Inputs))
	for _, b := range m.Inputs {
		if b.Address.Sheet == "" || b.Address.Range == "" {
			return fmt.Errorf("%w: input %s has no address", ErrInvalidInput, b.Field)
		}
		if bound[b.Field] {
			return fmt.Errorf("%w: input %s bound twice", ErrInvalidInput, b.Field)
		}
		bound[b.Field] = true
	}
	for _, f := range AllInputFields() {
		if !bound[f] {
			return fmt.Errorf("%w: input %s is not bound", ErrInvalidInput, f)
		}
	}

	if len(m.Outputs) == 0 {
		return fmt.Errorf("%w: cell map has no outputs", ErrInvalidInput)
	}
	keys := make(map[string]bool, len(m.Outputs))
	for _, o := range m.Outputs {
		if o.Key == "" || o.Address.Sheet == "" || o.Address.Range == "" {
			return fmt.Errorf("%w: output %q is incomplete", ErrInvalidInput, o.Key)
		}
		if keys[o.Key] {
			return fmt.Errorf("%w: output %s listed twice", ErrInvalidInput, o.Key)
		}
		keys[o.Key] = true
	}

	if m.Options.Sheet == "" || m.Options.Range == "" {
		return fmt.Errorf("%w: options range is not set", ErrInvalidInput)
	}
	return nil
}
