// Package cli provides the cobra command tree for cswcalc.
// Commands reach the core only through driving ports, which are built
// lazily so that configuration commands work before the workbook is set up.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Services are the core services that need a valid configuration.
type Services struct {
	Estimator driving.EstimatorService
	Wizard    driving.WizardService
	Auth      driving.AuthService
	History   driving.HistoryService

	// SetPrompter routes device sign-in prompts. Nil when the backend
	// needs no sign-in.
	SetPrompter func(driven.DeviceCodePrompter)

	// Close releases stores and sessions. Optional.
	Close func() error
}

// ServiceFactory builds the services from the configuration directory.
type ServiceFactory func(ctx context.Context, configDir string) (*Services, error)

// ConfigFactory opens the configuration service for a directory.
type ConfigFactory func(configDir string) (driving.ConfigService, error)

var (
	serviceFactory ServiceFactory
	configFactory  ConfigFactory

	services      *Services
	configService driving.ConfigService
)

var rootCmd = &cobra.Command{
	Use:   "cswcalc",
	Short: "Commercial secondary window savings estimator",
	Long: `cswcalc estimates the energy savings of commercial secondary windows (CSW).

It writes building inputs into a savings workbook stored in OneDrive or
SharePoint, recalculates it and reads back the computed savings.

Get started:
  cswcalc config set auth.tenant_id <tenant-guid>
  cswcalc config set auth.client_id <app-guid>
  cswcalc config set workbook.path "/me/drive/root:/CSW Savings Calculator.xlsx"
  cswcalc wizard`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log each network checkpoint to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.cswcalc)")
}

// SetServiceFactory sets how services are built on first use.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetConfigFactory sets how the configuration service is opened.
func SetConfigFactory(f ConfigFactory) {
	configFactory = f
}

// SetServices injects ready-made services, bypassing the factory.
func SetServices(s *Services) {
	services = s
}

// SetConfigService injects a ready-made configuration service.
func SetConfigService(s driving.ConfigService) {
	configService = s
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if serviceFactory == nil {
		return nil, errors.New("services not configured")
	}
	s, err := serviceFactory(commandContext(cmd), configDir)
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

func loadConfigService() (driving.ConfigService, error) {
	if configService != nil {
		return configService, nil
	}
	if configFactory == nil {
		return nil, errors.New("config service not configured")
	}
	s, err := configFactory(configDir)
	if err != nil {
		return nil, err
	}
	configService = s
	return configService, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
