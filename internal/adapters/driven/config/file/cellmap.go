package file

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

//go:embed cellmap.schema.json
var cellMapSchema []byte

const cellMapSchemaURL = "https://github.com/custodia-labs/cswcalc/cellmap.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// cellMapFile is the on-disk override. Absent sections keep the default
// layout; inputs are merged field by field.
type cellMapFile struct {
	InputSheet string            `json:"input_sheet,omitempty"`
	Inputs     map[string]string `json:"inputs,omitempty"`
	Outputs    []outputFile      `json:"outputs,omitempty"`
	Options    string            `json:"options,omitempty"`
}

type outputFile struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Address string `json:"address"`
}

// LoadCellMap reads a cell-map override from path and merges it over the
// default layout. An empty path returns the default.
func LoadCellMap(path string) (domain.CellMap, error) {
	if path == "" {
		return domain.DefaultCellMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CellMap{}, &domain.NotFoundError{Path: path, Err: err}
		}
		return domain.CellMap{}, fmt.Errorf("reading cell map: %w", err)
	}
	return ParseCellMap(data)
}

// ParseCellMap validates data against the cell-map schema and merges it
// over the default layout.
func ParseCellMap(data []byte) (domain.CellMap, error) {
	if err := validateCellMap(data); err != nil {
		return domain.CellMap{}, err
	}

	var f cellMapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.CellMap{}, fmt.Errorf("%w: cell map: %v", domain.ErrInvalidInput, err)
	}

	m := domain.DefaultCellMap()
	sheet := domain.DefaultInputSheet
	if f.InputSheet != "" {
		sheet = f.InputSheet
		for i := range m.Inputs {
			m.Inputs[i].Address.Sheet = sheet
		}
		for i := range m.Outputs {
			m.Outputs[i].Address.Sheet = sheet
		}
	}

	for i, b := range m.Inputs {
		raw, ok := f.Inputs[string(b.Field)]
		if !ok {
			continue
		}
		addr, err := domain.ParseCellAddress(raw, sheet)
		if err != nil {
			return domain.CellMap{}, err
		}
		m.Inputs[i].Address = addr
	}

	if len(f.Outputs) > 0 {
		m.Outputs = make([]domain.OutputBinding, 0, len(f.Outputs))
		for _, o := range f.Outputs {
			addr, err := domain.ParseCellAddress(o.Address, sheet)
			if err != nil {
				return domain.CellMap{}, err
			}
			label := o.Label
			if label == "" {
				label = o.Key
			}
			m.Outputs = append(m.Outputs, domain.OutputBinding{Key: o.Key, Label: label, Address: addr})
		}
	}

	if f.Options != "" {
		addr, err := domain.ParseCellAddress(f.Options, domain.DefaultOptionsSheet)
		if err != nil {
			return domain.CellMap{}, err
		}
		m.Options = addr
	}

	if err := m.Validate(); err != nil {
		return domain.CellMap{}, err
	}
	return m, nil
}

// WriteCellMapTemplate writes the default layout to path as a starting
// point for an override. An existing file is left untouched.
func WriteCellMapTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrInvalidInput, path)
	}

	def := domain.DefaultCellMap()
	f := cellMapFile{
		InputSheet: domain.DefaultInputSheet,
		Inputs:     make(map[string]string, len(def.Inputs)),
		Options:    def.Options.String(),
	}
	for _, b := range def.Inputs {
		f.Inputs[string(b.Field)] = b.Address.Range
	}
	for _, o := range def.Outputs {
		f.Outputs = append(f.Outputs, outputFile{Key: o.Key, Label: o.Label, Address: o.Address.Range})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

func validateCellMap(data []byte) error {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(cellMapSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(cellMapSchemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(cellMapSchemaURL)
	})
	if schemaErr != nil {
		return fmt.Errorf("compiling cell map schema: %w", schemaErr)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: cell map is not valid JSON: %v", domain.ErrInvalidInput, err)
	}
	if err := compiledSchema.Validate(inst); err != nil {
		return fmt.Errorf("%w: cell map: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
