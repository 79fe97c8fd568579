package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for cswcalc resources.
	uriScheme = "cswcalc://"

	// recentEstimates is how many estimates the listing resource returns.
	recentEstimates = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cellmap",
		Name:        "cellmap",
		Description: "Workbook cells the estimator writes inputs to and reads results from",
		MIMEType:    "application/json",
	}, s.handleCellMapResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "estimates",
		Name:        "estimates",
		Description: "Recent savings estimates, newest first",
		MIMEType:    "application/json",
	}, s.handleEstimatesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "estimates/{estimateId}",
		Name:        "estimate",
		Description: "Inputs and results of one estimate",
		MIMEType:    "application/json",
	}, s.handleEstimateResource)
}

// handleCellMapResource returns the active cell map.
func (s *Server) handleCellMapResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	m := s.ports.Estimator.CellMap()

	type outputInfo struct {
		Key     string `json:"key"`
		Label   string `json:"label"`
		Address string `json:"address"`
	}
	view := struct {
		Inputs  map[string]string `json:"inputs"`
		Outputs []outputInfo      `json:"outputs"`
		Options string            `json:"options"`
	}{
		Inputs:  make(map[string]string, len(m.Inputs)),
		Outputs: make([]outputInfo, len(m.Outputs)),
		Options: m.Options.String(),
	}
	for _, in := range m.Inputs {
		view.Inputs[string(in.Field)] = in.Address.String()
	}
	for i, out := range m.Outputs {
		view.Outputs[i] = outputInfo{Key: out.Key, Label: out.Label, Address: out.Address.String()}
	}

	return jsonResource(req.Params.URI, view)
}

// handleEstimatesResource returns recent estimates.
func (s *Server) handleEstimatesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	estimates, err := s.ports.History.List(ctx, recentEstimates)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}

	type estimateInfo struct {
		ID        string `json:"id"`
		State     string `json:"state"`
		City      string `json:"city"`
		CreatedAt string `json:"created_at"`
		URI       string `json:"uri"`
	}

	infos := make([]estimateInfo, len(estimates))
	for i := range estimates {
		infos[i] = estimateInfo{
			ID:        estimates[i].ID,
			State:     estimates[i].Inputs.Location.State,
			City:      estimates[i].Inputs.Location.City,
			CreatedAt: estimates[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			URI:       uriScheme + "estimates/" + estimates[i].ID,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleEstimateResource returns one estimate.
func (s *Server) handleEstimateResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractEstimateID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	estimate, err := s.ports.History.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting estimate: %w", err)
	}

	return jsonResource(req.Params.URI, estimate)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEstimateID extracts the ID from a URI like cswcalc://estimates/{estimateId}.
func extractEstimateID(uri string) string {
	const prefix = uriScheme + "estimates/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
