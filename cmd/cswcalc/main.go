// Command cswcalc estimates commercial secondary window savings by driving
// a savings workbook.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/auth"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/graph"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cswcalc/internal/adapters/driven/xlsx"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/cli"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
	"github.com/custodia-labs/cswcalc/internal/core/services"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetConfigFactory(openConfig)
	cli.SetServiceFactory(buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func openConfig(configDir string) (driving.ConfigService, error) {
	return openConfigService(configDir)
}

func openConfigService(configDir string) (*services.ConfigService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	return services.NewConfigService(store), nil
}

// buildServices wires every adapter for the configured backend. The
// configuration is validated before anything touches the network.
func buildServices(_ context.Context, configDir string) (*cli.Services, error) {
	configSvc, err := openConfigService(configDir)
	if err != nil {
		return nil, err
	}
	cfg, err := configSvc.Load()
	if err != nil {
		return nil, err
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("store: %s", store.Path())

	cellMap, err := file.LoadCellMap(cfg.CellMapPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	history, err := storage.OpenHistory(cfg.HistoryDSN, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	cache := store.CredentialCache()
	var (
		tokens      driven.TokenProvider
		client      driven.WorkbookClient
		setPrompter func(driven.DeviceCodePrompter)
	)
	switch cfg.Backend {
	case domain.BackendXLSX:
		tokens = auth.NewNullTokenProvider()
		client = xlsx.NewWorkbook()
	default:
		provider := auth.NewProviderFromConfig(cfg, cache, nil)
		tokens = provider
		setPrompter = provider.SetPrompter
		client = graph.NewClient(cfg.GraphBaseURL, provider,
			graph.WithRateLimiter(graph.NewRateLimiter(cfg.RequestsPerSecond)))
	}
	logger.Debug("backend: %s, workbook: %s", cfg.Backend, cfg.WorkbookPath)

	locator := services.NewDocumentLocator(client, cfg.WorkbookPath)
	workbook := services.NewWorkbook(client, locator)
	estimator := services.NewEstimator(workbook, cellMap,
		services.WithHistory(history),
		services.WithBackend(cfg.Backend),
	)

	closeAll := func() error {
		var errs []error
		if cfg.HistoryDSN != "" {
			errs = append(errs, history.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}

	return &cli.Services{
		Estimator:   estimator,
		Wizard:      services.NewWizard(estimator),
		Auth:        services.NewAuthService(tokens, cache),
		History:     services.NewHistoryService(history),
		SetPrompter: setPrompter,
		Close:       closeAll,
	}, nil
}
