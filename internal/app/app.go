// Package app wires the portal's components together.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/finsight/finsight-portal/internal/alerts"
	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/config"
	"github.com/finsight/finsight-portal/internal/entitlement"
	"github.com/finsight/finsight-portal/internal/handlers"
	"github.com/finsight/finsight-portal/internal/interfaces"
	"github.com/finsight/finsight-portal/internal/mcp"
	"github.com/finsight/finsight-portal/internal/models"
	"github.com/finsight/finsight-portal/internal/poller"
	"github.com/finsight/finsight-portal/internal/reward"
	"github.com/finsight/finsight-portal/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage      interfaces.StorageManager
	Client       *client.FinsightClient
	Entitlements *entitlement.Store
	Reward       *reward.Controller
	AlertTracker *alerts.Tracker
	Poller       *poller.Poller

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	StockHandler     *handlers.StockHandler
	AlertsHandler    *handlers.AlertsHandler
	PortfolioHandler *handlers.PortfolioHandler
	WatchlistHandler *handlers.WatchlistHandler
	MarketHandler    *handlers.MarketHandler
	RewardHandler    *handlers.RewardHandler
	DashboardHandler *handlers.DashboardHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	// Storage failure is non-fatal: entitlement and seen-alert state
	// degrade to memory-only for the session.
	store, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("storage unavailable, state will not persist")
	} else {
		a.Storage = store
	}

	var kv interfaces.KeyValueStorage
	if a.Storage != nil {
		kv = a.Storage.KeyValueStorage()
	}

	a.Client = client.NewFinsightClient(cfg.API.URL)
	a.Entitlements = entitlement.NewStore(kv, logger)
	a.Reward = reward.NewController(a.Entitlements, nil, logger)
	a.AlertTracker = alerts.NewTracker(kv, logger)

	a.initPoller()
	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initPoller registers the live-updating resources on their cadences.
func (a *App) initPoller() {
	a.Poller = poller.New(a.Logger)
	cfg := a.Config.Polling

	a.Poller.Register("market_status", time.Duration(cfg.QuotesSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		return a.Client.GetMarketStatus(ctx)
	})
	a.Poller.Register("assets", time.Duration(cfg.QuotesSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		return a.Client.GetAssets(ctx)
	})
	a.Poller.Register("top_movers", time.Duration(cfg.QuotesSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		return a.Client.GetTopMovers(ctx, "KR")
	})
	a.Poller.Register("alerts", time.Duration(cfg.AlertsSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		list, err := a.Client.ListAlerts(ctx)
		if err != nil {
			return nil, err
		}
		// Surface newly triggered alerts once
		fresh := a.AlertTracker.Observe(ctx, list)
		for _, alert := range fresh {
			a.Logger.Info().
				Str("symbol", alert.Symbol).
				Str("type", string(alert.Type)).
				Float64("price", alert.TriggeredPrice).
				Msg("Alert triggered")
		}
		return list, nil
	})
	a.Poller.Register("watchlist", time.Duration(cfg.WatchlistSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		symbols, err := a.Client.GetWatchlist(ctx)
		if err != nil {
			return nil, err
		}
		summary := models.WatchlistSummary{UpdatedAt: time.Now()}
		for _, s := range symbols {
			entry := models.WatchlistEntry{Symbol: s}
			if quote, qerr := a.Client.GetQuote(ctx, s); qerr == nil {
				entry.Quote = quote
			}
			summary.Entries = append(summary.Entries, entry)
		}
		return &summary, nil
	})
	a.Poller.Register("calendar", time.Duration(cfg.CalendarSeconds)*time.Second, func(ctx context.Context) (interface{}, error) {
		return a.Client.GetCalendar(ctx)
	})
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.StockHandler = handlers.NewStockHandler(a.Logger, a.Client)
	a.AlertsHandler = handlers.NewAlertsHandler(a.Logger, a.Client, a.Entitlements, a.AlertTracker)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Logger, a.Client, a.Entitlements)
	a.WatchlistHandler = handlers.NewWatchlistHandler(a.Logger, a.Client)
	a.MarketHandler = handlers.NewMarketHandler(a.Logger, a.Client)
	a.RewardHandler = handlers.NewRewardHandler(a.Logger, a.Entitlements, a.Reward, a.Config.Reward.TargetAdCount, a.Config.Reward.RewardMinutes)
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.Poller)
	a.MCPHandler = mcp.NewHandler(a.Config, a.Logger, a.Client, a.Entitlements)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Start launches the background polling loops.
func (a *App) Start(ctx context.Context) {
	a.Poller.Start(ctx)
}

// Close stops background work and releases resources.
func (a *App) Close() error {
	if a.Poller != nil {
		a.Poller.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
