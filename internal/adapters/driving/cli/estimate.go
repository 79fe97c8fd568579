package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/xlsx"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 250 * time.Millisecond

// inputFlag binds a command-line flag to an input field.
type inputFlag struct {
	name  string
	field domain.InputField
}

var inputFlags = []inputFlag{
	{"state", domain.FieldState},
	{"city", domain.FieldCity},
	{"hvac", domain.FieldHVACSystem},
	{"heating-fuel", domain.FieldHeatingFuel},
	{"cooling", domain.FieldCoolingInstalled},
	{"window", domain.FieldExistingWindow},
	{"csw-type", domain.FieldCSWType},
	{"area", domain.FieldBuildingArea},
	{"floors", domain.FieldFloors},
	{"hours", domain.FieldOperatingHours},
	{"csw-area", domain.FieldCSWArea},
	{"electric-rate", domain.FieldElectricRate},
	{"gas-rate", domain.FieldGasRate},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Run one estimate without the wizard",
	Long: `Write inputs to the workbook, recalculate and print the savings.

Inputs come from a TOML file (--inputs), from flags, or both; flags win.
Every input is checked before the workbook is touched.

Examples:
  cswcalc estimate template > building.toml
  cswcalc estimate --inputs building.toml
  cswcalc estimate --inputs building.toml --gas-rate 1.05 --json
  cswcalc estimate --inputs building.toml --watch
  cswcalc estimate --inputs building.toml --export report.xlsx`,
	RunE: runEstimate,
}

var estimateTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an inputs file to start from",
	RunE:  runEstimateTemplate,
}

// Flags for estimate.
var (
	estimateInputsFile string
	estimateWatch      bool
	estimateExport     string
	estimateJSON       bool
)

func init() {
	for _, f := range inputFlags {
		estimateCmd.Flags().String(f.name, "", f.field.Label())
	}
	estimateCmd.Flags().StringVarP(&estimateInputsFile, "inputs", "i", "", "TOML file with the inputs")
	estimateCmd.Flags().BoolVarP(&estimateWatch, "watch", "w", false, "Re-run whenever the inputs file changes")
	estimateCmd.Flags().StringVarP(&estimateExport, "export", "o", "", "Also write inputs and results to this .xlsx file")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Print JSON")

	estimateCmd.AddCommand(estimateTemplateCmd)
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	if estimateWatch && estimateInputsFile == "" {
		return errors.New("--watch needs --inputs")
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Estimator == nil {
		return errors.New("estimator service not configured")
	}
	useTextPrompter(svc, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	if !estimateWatch {
		return estimateOnce(ctx, cmd, svc)
	}

	report := func() {
		if err := estimateOnce(ctx, cmd, svc); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	report()
	cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", estimateInputsFile)
	return watchFile(ctx, estimateInputsFile, func() {
		cmd.PrintErrln()
		cmd.PrintErrf("%s changed, recalculating\n", estimateInputsFile)
		report()
	})
}

func estimateOnce(ctx context.Context, cmd *cobra.Command, svc *Services) error {
	inputs, err := collectInputs(cmd)
	if err != nil {
		return err
	}

	result, err := svc.Estimator.Validate(ctx, inputs)
	if err != nil {
		return err
	}
	if !result.OK() {
		for _, v := range result.Violations {
			cmd.PrintErrf("  %s: %s\n", v.Field, v.Message)
		}
		return fmt.Errorf("%w: %d field(s) rejected", domain.ErrInvalidInput, len(result.Violations))
	}

	estimate, err := svc.Estimator.Calculate(ctx, inputs)
	if err != nil {
		return err
	}

	if estimateJSON {
		if err := printJSON(cmd, estimate); err != nil {
			return err
		}
	} else {
		printEstimate(cmd, estimate)
	}

	if estimateExport != "" {
		if err := xlsx.WriteReport(estimateExport, estimate); err != nil {
			return err
		}
		cmd.PrintErrf("Exported to %s\n", estimateExport)
	}
	return nil
}

// collectInputs reads the inputs file, then applies any flags given.
func collectInputs(cmd *cobra.Command) (*domain.EstimateInputs, error) {
	inputs := &domain.EstimateInputs{}
	if estimateInputsFile != "" {
		loaded, err := readInputsFile(estimateInputsFile)
		if err != nil {
			return nil, err
		}
		inputs = loaded
	}

	for _, f := range inputFlags {
		flag := cmd.Flags().Lookup(f.name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := inputs.SetValue(f.field, flag.Value.String()); err != nil {
			return nil, fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	return inputs, nil
}

func readInputsFile(path string) (*domain.EstimateInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inputs: %w", err)
	}
	var inputs domain.EstimateInputs
	if err := toml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, path, err)
	}
	return &inputs, nil
}

// watchFile calls onChange after path is written, until ctx is done. The
// parent directory is watched so editors that replace the file are seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("watch: %s", event)
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", path, err)
		case <-debounce:
			debounce = nil
			onChange()
		}
	}
}

func runEstimateTemplate(cmd *cobra.Command, _ []string) error {
	sample := domain.EstimateInputs{
		Location: domain.LocationInputs{State: "Texas", City: "Dallas"},
		Building: domain.BuildingInputs{
			HVACSystem:       domain.HVACSystemChoices[0],
			HeatingFuel:      domain.HeatingFuelNaturalGas,
			CoolingInstalled: domain.CoolingInstalledChoices[0],
			ExistingWindow:   domain.ExistingWindowChoices[0],
			CSWType:          domain.CSWTypeChoices[0],
		},
		Usage: domain.UsageInputs{BuildingArea: 50000, Floors: 3, OperatingHours: 4000, CSWArea: 5000},
		Rates: domain.RateInputs{ElectricRate: 0.12, GasRate: 1.05},
	}

	data, err := toml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	cmd.Print(string(data))
	return nil
}
