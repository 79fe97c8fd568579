package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// ListLocationsInput is the input schema for the list_locations tool.
type ListLocationsInput struct {
	State string `json:"state,omitempty" jsonschema:"only list the cities of this state"`
}

// ListLocationsOutput is the output schema for the list_locations tool.
type ListLocationsOutput struct {
	Locations []LocationOutput `json:"locations"`
	Count     int              `json:"count"`
}

// LocationOutput is one state with its cities, in workbook order.
type LocationOutput struct {
	State  string   `json:"state"`
	Cities []string `json:"cities"`
}

// EstimateInput is the input schema for the estimate_savings tool.
type EstimateInput struct {
	State            string  `json:"state" jsonschema:"state, as returned by list_locations"`
	City             string  `json:"city" jsonschema:"city within the state, as returned by list_locations"`
	HVACSystem       string  `json:"hvac_system" jsonschema:"HVAC system type"`
	HeatingFuel      string  `json:"heating_fuel" jsonschema:"Electric, Natural Gas or None"`
	CoolingInstalled string  `json:"cooling_installed" jsonschema:"Yes or No"`
	ExistingWindow   string  `json:"existing_window" jsonschema:"Single pane or Double pane"`
	CSWType          string  `json:"csw_type" jsonschema:"Single or Double"`
	BuildingArea     float64 `json:"building_area" jsonschema:"building area in square feet"`
	Floors           int     `json:"floors" jsonschema:"number of floors"`
	OperatingHours   int     `json:"operating_hours" jsonschema:"annual operating hours"`
	CSWArea          float64 `json:"csw_area" jsonschema:"square feet of secondary windows installed"`
	ElectricRate     float64 `json:"electric_rate" jsonschema:"electricity price in $/kWh"`
	GasRate          float64 `json:"gas_rate,omitempty" jsonschema:"natural gas price in $/therm, required for gas heating"`
}

// EstimateOutput is the output schema for the estimate_savings tool.
type EstimateOutput struct {
	ID        string         `json:"id"`
	Results   []ResultOutput `json:"results"`
	CreatedAt string         `json:"created_at"`
}

// ResultOutput is one computed value. Value is null for empty cells.
type ResultOutput struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_locations",
		Description: "List the states and cities the savings workbook has climate data for",
	}, s.handleListLocations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "estimate_savings",
		Description: "Estimate annual energy savings of commercial secondary windows " +
			"for a building. Inputs are checked before the workbook is touched.",
	}, s.handleEstimate)
}

// handleListLocations handles the list_locations tool invocation.
func (s *Server) handleListLocations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListLocationsInput,
) (*mcp.CallToolResult, ListLocationsOutput, error) {
	options, err := s.ports.Estimator.LoadOptions(ctx)
	if err != nil {
		return nil, ListLocationsOutput{}, err
	}

	states := options.Categories
	if input.State != "" {
		if !options.Has(input.State) {
			return nil, ListLocationsOutput{}, fmt.Errorf("unknown state %q", input.State)
		}
		states = []string{input.State}
	}

	output := ListLocationsOutput{Locations: make([]LocationOutput, 0, len(states))}
	for _, state := range states {
		output.Locations = append(output.Locations, LocationOutput{
			State:  state,
			Cities: options.OptionsFor(state),
		})
	}
	output.Count = len(output.Locations)

	return nil, output, nil
}

// handleEstimate handles the estimate_savings tool invocation. Rejected
// inputs are reported as a tool error naming every violated field.
func (s *Server) handleEstimate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EstimateInput,
) (*mcp.CallToolResult, EstimateOutput, error) {
	inputs := input.toDomain()

	result, err := s.ports.Estimator.Validate(ctx, inputs)
	if err != nil {
		return nil, EstimateOutput{}, err
	}
	if !result.OK() {
		return nil, EstimateOutput{}, violationError(result)
	}

	estimate, err := s.ports.Estimator.Calculate(ctx, inputs)
	if err != nil {
		return nil, EstimateOutput{}, err
	}

	return nil, toEstimateOutput(estimate), nil
}

func (in EstimateInput) toDomain() *domain.EstimateInputs {
	return &domain.EstimateInputs{
		Location: domain.LocationInputs{State: in.State, City: in.City},
		Building: domain.BuildingInputs{
			HVACSystem:       in.HVACSystem,
			HeatingFuel:      in.HeatingFuel,
			CoolingInstalled: in.CoolingInstalled,
			ExistingWindow:   in.ExistingWindow,
			CSWType:          in.CSWType,
		},
		Usage: domain.UsageInputs{
			BuildingArea:   in.BuildingArea,
			Floors:         in.Floors,
			OperatingHours: in.OperatingHours,
			CSWArea:        in.CSWArea,
		},
		Rates: domain.RateInputs{ElectricRate: in.ElectricRate, GasRate: in.GasRate},
	}
}

func toEstimateOutput(e *domain.Estimate) EstimateOutput {
	out := EstimateOutput{
		ID:        e.ID,
		Results:   make([]ResultOutput, len(e.Results)),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
	for i, r := range e.Results {
		out.Results[i] = ResultOutput{Key: r.Key, Label: r.Label, Value: r.Value.Raw()}
	}
	return out
}

func violationError(r domain.ValidationResult) error {
	fields := make([]string, 0, len(r.Violations))
	for _, f := range r.Fields() {
		fields = append(fields, string(f))
	}
	return fmt.Errorf("%w: %s (fields: %s)", domain.ErrInvalidInput, r.String(), strings.Join(fields, ", "))
}
