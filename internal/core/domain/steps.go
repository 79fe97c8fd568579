package domain

// StepID identifies a wizard step.
type StepID string

// Wizard steps.
const (
	StepLocation StepID = "location"
	StepBuilding StepID = "building"
	StepUsage    StepID = "usage"
	StepRates    StepID = "rates"
	StepResults  StepID = "results"
)

// Step is one page of the wizard. Validate gates leaving the step forward;
// a nil Validate always passes.
type Step struct {
	ID     StepID
	Title  string
	Fields []InputField
	// Validate checks only this step's fields.
	Validate func(in *EstimateInputs, options OptionsIndex) ValidationResult
}

// DefaultSteps returns the location, building, usage, rates and results steps.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:     StepLocation,
			Title:  "Location",
			Fields: []InputField{FieldState, FieldCity},
			Validate: func(in *EstimateInputs, options OptionsIndex) ValidationResult {
				return ValidateLocation(in.Location, options)
			},
		},
		{
			ID:    StepBuilding,
			Title: "Building",
			Fields: []InputField{
				FieldHVACSystem, FieldHeatingFuel, FieldCoolingInstalled,
				FieldExistingWindow, FieldCSWType,
			},
			Validate: func(in *EstimateInputs, _ OptionsIndex) ValidationResult {
				return ValidateBuilding(in.Building)
			},
		},
		{
			ID:     StepUsage,
			Title:  "Usage",
			Fields: []InputField{FieldBuildingArea, FieldFloors, FieldOperatingHours, FieldCSWArea},
			Validate: func(in *EstimateInputs, _ OptionsIndex) ValidationResult {
				return ValidateUsage(in.Usage)
			},
		},
		{
			ID:     StepRates,
			Title:  "Rates",
			Fields: []InputField{FieldElectricRate, FieldGasRate},
			Validate: func(in *EstimateInputs, _ OptionsIndex) ValidationResult {
				return ValidateRates(in.Rates, in.Building.HeatingFuel)
			},
		},
		{
			ID:    StepResults,
			Title: "Results",
		},
	}
}
