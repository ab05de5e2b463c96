// Package app wires configuration, storage, clients and services into the
// shared core used by the server and the CLI.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/quantum/internal/clients/eodhd"
	"github.com/bobmcallan/quantum/internal/clients/github"
	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/services/history"
	"github.com/bobmcallan/quantum/internal/services/market"
	"github.com/bobmcallan/quantum/internal/services/portfolio"
	"github.com/bobmcallan/quantum/internal/services/watchlist"
	"github.com/bobmcallan/quantum/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	MarketService    interfaces.MarketService
	PortfolioService interfaces.PortfolioService
	HistoryService   interfaces.HistoryService
	WatchlistService interfaces.WatchlistService
	Analytics        interfaces.AnalyticsTrigger // nil when the workflow is not configured
	StartupTime      time.Time

	scheduler *Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, QUANTUM_CONFIG,
// quantum.toml next to the binary, then config/quantum.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("QUANTUM_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "quantum.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/quantum.toml"
		}
	}
	return configPath
}

// NewApp loads configuration, connects storage and builds every service.
// configPath may be empty, in which case ResolveConfigPath applies.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := New(config, logger, storageManager, nil)
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// New builds the services on top of an already connected storage manager.
// A nil client builds the EODHD client from config.
func New(config *common.Config, logger *common.Logger, storage interfaces.StorageManager, client interfaces.MarketDataClient) *App {
	if client == nil {
		if config.Clients.EODHD.APIKey == "" {
			logger.Warn().Msg("EODHD API key not configured - market data requests will fail")
		}
		client = eodhd.NewClient(config.Clients.EODHD.APIKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
			eodhd.WithExchange(config.Clients.EODHD.Exchange),
		)
	}

	marketService := market.NewService(client, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		MarketClient:     client,
		MarketService:    marketService,
		PortfolioService: portfolio.NewService(storage.PositionStore(), marketService, config.Portfolio, logger),
		HistoryService:   history.NewService(storage.PositionStore(), marketService, logger),
		WatchlistService: watchlist.NewService(storage.WatchlistStore(), marketService, logger),
		StartupTime:      time.Now(),
	}

	if config.Clients.GitHub.Enabled() {
		a.Analytics = github.NewClientFromConfig(config.Clients.GitHub, logger)
	} else {
		logger.Info().Msg("GitHub workflow not configured - analytics trigger disabled")
	}

	return a
}

// StartScheduler registers the configured cron jobs and starts them.
func (a *App) StartScheduler() error {
	s, err := NewScheduler(a.Config.Scheduler, a.Storage.PositionStore(), a.PortfolioService, a.Analytics, a.Logger)
	if err != nil {
		return err
	}
	s.Start()
	a.scheduler = s
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
