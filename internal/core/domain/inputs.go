package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InputField names one value the wizard collects.
type InputField string

// Input fields, in the order they are written to the workbook.
const (
	FieldState            InputField = "state"
	FieldCity             InputField = "city"
	FieldHVACSystem       InputField = "hvac_system"
	FieldHeatingFuel      InputField = "heating_fuel"
	FieldCoolingInstalled InputField = "cooling_installed"
	FieldExistingWindow   InputField = "existing_window"
	FieldCSWType          InputField = "csw_type"
	FieldBuildingArea     InputField = "building_area"
	FieldFloors           InputField = "floors"
	FieldOperatingHours   InputField = "operating_hours"
	FieldCSWArea          InputField = "csw_area"
	FieldElectricRate     InputField = "electric_rate"
	FieldGasRate          InputField = "gas_rate"
)

// AllInputFields lists every field in write order.
func AllInputFields() []InputField {
	return []InputField{
		FieldState, FieldCity,
		FieldHVACSystem, FieldHeatingFuel, FieldCoolingInstalled, FieldExistingWindow, FieldCSWType,
		FieldBuildingArea, FieldFloors, FieldOperatingHours, FieldCSWArea,
		FieldElectricRate, FieldGasRate,
	}
}

// Label returns the human-readable name of the field.
func (f InputField) Label() string {
	switch f {
	case FieldState:
		return "State"
	case FieldCity:
		return "City"
	case FieldHVACSystem:
		return "HVAC System Type"
	case FieldHeatingFuel:
		return "Heating Fuel"
	case FieldCoolingInstalled:
		return "Cooling Installed?"
	case FieldExistingWindow:
		return "Type of Existing Window"
	case FieldCSWType:
		return "Type of CSW Analyzed"
	case FieldBuildingArea:
		return "Building Area (ft²)"
	case FieldFloors:
		return "No. of Floors"
	case FieldOperatingHours:
		return "Annual Operating Hours"
	case FieldCSWArea:
		return "Sq.ft. of CSW Installed"
	case FieldElectricRate:
		return "Electric Rate ($/kWh)"
	case FieldGasRate:
		return "Natural Gas Rate ($/therm)"
	default:
		return string(f)
	}
}

// Fixed choice lists. State and city come from the workbook instead.
var (
	HVACSystemChoices = []string{
		"Packaged VAV with electric reheat",
		"Packaged VAV with hydronic reheat",
		"Built-up VAV with hydronic reheat",
		"Other",
	}
	HeatingFuelChoices      = []string{"Electric", "Natural Gas", "None"}
	CoolingInstalledChoices = []string{"Yes", "No"}
	ExistingWindowChoices   = []string{"Single pane", "Double pane"}
	CSWTypeChoices          = []string{"Single", "Double"}
)

// HeatingFuelNaturalGas is the fuel that makes the gas rate mandatory.
const HeatingFuelNaturalGas = "Natural Gas"

// ChoicesFor returns the fixed choices of a select field, nil for free fields.
func ChoicesFor(f InputField) []string {
	switch f {
	case FieldHVACSystem:
		return HVACSystemChoices
	case FieldHeatingFuel:
		return HeatingFuelChoices
	case FieldCoolingInstalled:
		return CoolingInstalledChoices
	case FieldExistingWindow:
		return ExistingWindowChoices
	case FieldCSWType:
		return CSWTypeChoices
	default:
		return nil
	}
}

// LocationInputs is collected on the location step.
type LocationInputs struct {
	State string `json:"state" toml:"state"`
	City  string `json:"city" toml:"city"`
}

// BuildingInputs is collected on the building step.
type BuildingInputs struct {
	HVACSystem       string `json:"hvac_system" toml:"hvac_system"`
	HeatingFuel      string `json:"heating_fuel" toml:"heating_fuel"`
	CoolingInstalled string `json:"cooling_installed" toml:"cooling_installed"`
	ExistingWindow   string `json:"existing_window" toml:"existing_window"`
	CSWType          string `json:"csw_type" toml:"csw_type"`
}

// UsageInputs is collected on the usage step.
type UsageInputs struct {
	BuildingArea   float64 `json:"building_area" toml:"building_area"`
	Floors         int     `json:"floors" toml:"floors"`
	OperatingHours int     `json:"operating_hours" toml:"operating_hours"`
	CSWArea        float64 `json:"csw_area" toml:"csw_area"`
}

// RateInputs is collected on the rates step.
type RateInputs struct {
	ElectricRate float64 `json:"electric_rate" toml:"electric_rate"`
	GasRate      float64 `json:"gas_rate" toml:"gas_rate"`
}

// EstimateInputs is everything the wizard collects. Later steps may stay
// unset while earlier ones are filled in.
type EstimateInputs struct {
	Location LocationInputs `json:"location" toml:"location"`
	Building BuildingInputs `json:"building" toml:"building"`
	Usage    UsageInputs    `json:"usage" toml:"usage"`
	Rates    RateInputs     `json:"rates" toml:"rates"`
}

// Value returns the scalar written to the workbook for field.
func (in *EstimateInputs) Value(field InputField) (any, error) {
	switch field {
	case FieldState:
		return in.Location.State, nil
	case FieldCity:
		return in.Location.City, nil
	case FieldHVACSystem:
		return in.Building.HVACSystem, nil
	case FieldHeatingFuel:
		return in.Building.HeatingFuel, nil
	case FieldCoolingInstalled:
		return in.Building.CoolingInstalled, nil
	case FieldExistingWindow:
		return in.Building.ExistingWindow, nil
	case FieldCSWType:
		return in.Building.CSWType, nil
	case FieldBuildingArea:
		return in.Usage.BuildingArea, nil
	case FieldFloors:
		return in.Usage.Floors, nil
	case FieldOperatingHours:
		return in.Usage.OperatingHours, nil
	case FieldCSWArea:
		return in.Usage.CSWArea, nil
	case FieldElectricRate:
		return in.Rates.ElectricRate, nil
	case FieldGasRate:
		return in.Rates.GasRate, nil
	default:
		return nil, fmt.Errorf("%w: unknown input field %q", ErrInvalidInput, field)
	}
}

// IsNumeric reports whether the field holds a number.
func (f InputField) IsNumeric() bool {
	switch f {
	case FieldBuildingArea, FieldFloors, FieldOperatingHours, FieldCSWArea, FieldElectricRate, FieldGasRate:
		return true
	default:
		return false
	}
}

// SetValue parses text into field. Blank numeric text stores zero so that
// validation reports the field as missing.
func (in *EstimateInputs) SetValue(field InputField, text string) error {
	text = strings.TrimSpace(text)
	if field.IsNumeric() {
		return in.setNumber(field, text)
	}
	switch field {
	case FieldState:
		in.Location.State = text
	case FieldCity:
		in.Location.City = text
	case FieldHVACSystem:
		in.Building.HVACSystem = text
	case FieldHeatingFuel:
		in.Building.HeatingFuel = text
	case FieldCoolingInstalled:
		in.Building.CoolingInstalled = text
	case FieldExistingWindow:
		in.Building.ExistingWindow = text
	case FieldCSWType:
		in.Building.CSWType = text
	default:
		return fmt.Errorf("%w: unknown input field %q", ErrInvalidInput, field)
	}
	return nil
}

func (in *EstimateInputs) setNumber(field InputField, text string) error {
	if text == "" {
		text = "0"
	}
	text = strings.ReplaceAll(text, ",", "")
	switch field {
	case FieldFloors, FieldOperatingHours:
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("%w: %s must be a whole number", ErrInvalidInput, field.Label())
		}
		if field == FieldFloors {
			in.Usage.Floors = n
		} else {
			in.Usage.OperatingHours = n
		}
		return nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s must be a number", ErrInvalidInput, field.Label())
	}
	switch field {
	case FieldBuildingArea:
		in.Usage.BuildingArea = f
	case FieldCSWArea:
		in.Usage.CSWArea = f
	case FieldElectricRate:
		in.Rates.ElectricRate = f
	case FieldGasRate:
		in.Rates.GasRate = f
	}
	return nil
}

// ValidateLocation checks the location step. When options is not empty the
// state and city must come from it.
func ValidateLocation(in LocationInputs, options OptionsIndex) ValidationResult {
	r := ValidationResult{Step: StepLocation}
	state := strings.TrimSpace(in.State)
	city := strings.TrimSpace(in.City)

	switch {
	case state == "":
		r.Add(FieldState, "State is required")
	case !options.IsEmpty() && !options.Has(state):
		r.Add(FieldState, fmt.Sprintf("State %q is not in the workbook's list", state))
	}

	switch {
	case city == "":
		r.Add(FieldCity, "City is required")
	case !options.IsEmpty() && options.Has(state) && !options.Contains(state, city):
		r.Add(FieldCity, fmt.Sprintf("City %q is not listed for %s", city, state))
	}
	return r
}

// ValidateBuilding checks the building step against the fixed choices.
func ValidateBuilding(in BuildingInputs) ValidationResult {
	r := ValidationResult{Step: StepBuilding}
	checkChoice(&r, FieldHVACSystem, in.HVACSystem)
	checkChoice(&r, FieldHeatingFuel, in.HeatingFuel)
	checkChoice(&r, FieldCoolingInstalled, in.CoolingInstalled)
	checkChoice(&r, FieldExistingWindow, in.ExistingWindow)
	checkChoice(&r, FieldCSWType, in.CSWType)
	return r
}

// ValidateUsage checks the usage step. Every quantity must be positive.
func ValidateUsage(in UsageInputs) ValidationResult {
	r := ValidationResult{Step: StepUsage}
	if in.BuildingArea <= 0 {
		r.Add(FieldBuildingArea, "Building Area must be greater than 0")
	}
	if in.Floors <= 0 {
		r.Add(FieldFloors, "No. of Floors must be greater than 0")
	}
	if in.OperatingHours <= 0 {
		r.Add(FieldOperatingHours, "Annual Operating Hours must be greater than 0")
	}
	if in.CSWArea <= 0 {
		r.Add(FieldCSWArea, "Sq.ft. of CSW Installed must be greater than 0")
	}
	return r
}

// ValidateRates checks the rates step. The gas rate is only required when
// the building heats with natural gas.
func ValidateRates(in RateInputs, heatingFuel string) ValidationResult {
	r := ValidationResult{Step: StepRates}
	if in.ElectricRate <= 0 {
		r.Add(FieldElectricRate, "Electric Rate must be greater than 0")
	}
	switch {
	case in.GasRate < 0:
		r.Add(FieldGasRate, "Natural Gas Rate cannot be negative")
	case in.GasRate == 0 && heatingFuel == HeatingFuelNaturalGas:
		r.Add(FieldGasRate, "Natural Gas Rate is required for gas heating")
	}
	return r
}

// Validate checks every step in order.
func (in *EstimateInputs) Validate(options OptionsIndex) ValidationResult {
	r := ValidateLocation(in.Location, options)
	r.Merge(ValidateBuilding(in.Building))
	r.Merge(ValidateUsage(in.Usage))
	r.Merge(ValidateRates(in.Rates, in.Building.HeatingFuel))
	r.Step = StepResults
	return r
}

func checkChoice(r *ValidationResult, field InputField, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		r.Add(field, field.Label()+" is required")
		return
	}
	for _, c := range ChoicesFor(field) {
		if c == value {
			return
		}
	}
	r.Add(field, fmt.Sprintf("%s %q is not a valid choice", field.Label(), value))
}
