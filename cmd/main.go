package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "thermostat_hub/docs"
	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/config"
	"thermostat_hub/internal/handlers"
	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/pubsub"
	"thermostat_hub/internal/repository"
	"thermostat_hub/internal/repository/db"
	"thermostat_hub/internal/sdm"
	"thermostat_hub/internal/server"
	"thermostat_hub/internal/service"
	"thermostat_hub/internal/weather"

	"github.com/thejerf/suture/v4"
)

const shutdownTimeout = 10 * time.Second

// @title                       Thermostat Hub API
// @version                     1.0
// @description                 Thermostat state sync, commands, weather and telemetry.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// bootstrap logger until the configured level is known
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	logger.SetLevel(cfg.Log.Level)
	log.Infow("config_loaded",
		"environment", cfg.Environment,
		"demo_mode", cfg.DemoMode,
		"subscription", cfg.PubSub.Subscription,
		"telemetry", cfg.Telemetry.Enabled,
	)

	sqlDB, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	hub := broadcast.NewHub(log.Named("hub"))
	creds := sdm.NewCredentialCache(sdm.CredentialConfig{
		ClientID:     cfg.SDM.ClientID,
		ClientSecret: cfg.SDM.ClientSecret,
		RefreshToken: cfg.SDM.RefreshToken,
		TokenURL:     cfg.SDM.TokenURL,
		Buffer:       cfg.SDM.TokenBuffer,
		Timeout:      cfg.SDM.RequestTimeout,
		Demo:         cfg.DemoMode,
	}, nil, log.Named("credentials"))
	sdmClient := sdm.NewClient(sdm.ClientConfig{
		BaseURL:       cfg.SDM.BaseURL,
		ProjectID:     cfg.SDM.ProjectID,
		Timeout:       cfg.SDM.RequestTimeout,
		RatePerSecond: cfg.SDM.RatePerSecond,
		RateBurst:     cfg.SDM.RateBurst,
	}, creds, nil, log.Named("sdm"))
	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.UserAgent, nil, log.Named("nws"))

	services := service.NewService(repos, service.Deps{
		Lister:       sdmClient,
		Executor:     sdmClient,
		Weather:      weatherClient,
		Publisher:    hub,
		Log:          log,
		Demo:         cfg.DemoMode,
		DemoDelay:    cfg.SDM.DemoDelay,
		CacheTTL:     cfg.SDM.CacheTTL,
		Latitude:     cfg.Weather.Latitude,
		Longitude:    cfg.Weather.Longitude,
		WeatherFresh: cfg.Weather.Freshness,
		SigningKey:   cfg.Auth.SigningKey,
		TokenTTL:     cfg.Auth.TokenTTL,
	})

	// context for background services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedded := startEmbeddedBroker(cfg, log)
	supervisor := buildSupervisor(cfg, services, embedded, log)
	supervisorDone := supervisor.ServeBackground(ctx)

	apiHandler := handlers.NewHandler(services, hub, handlers.Options{
		CORSOrigins:  cfg.CORS.Origins,
		AuthRequired: cfg.Auth.Required,
		PushToken:    cfg.PubSub.PushToken,
	}, log.Named("http"))
	if cfg.PubSub.PushToken == "" {
		log.Infow("pubsub_push_disabled", "reason", "pubsub.push_token not set")
	}

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)

	if err := <-supervisorDone; err != nil && ctx.Err() == nil {
		log.Errorw("supervisor_stopped", "err", err)
	}
	if embedded != nil {
		embedded.Shutdown()
	}
}

func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "thermostat.db")
		dbPath = "thermostat.db"
	}
	return db.InitDB(dbPath)
}

// startEmbeddedBroker runs an in-process NATS server when configured. A
// failure is logged and the process continues without change events.
func startEmbeddedBroker(cfg *config.Config, log *logger.Logger) *pubsub.EmbeddedServer {
	if cfg.DemoMode || !cfg.PubSub.Enabled || !cfg.PubSub.Embedded {
		return nil
	}
	ns, err := pubsub.StartEmbedded(pubsub.EmbeddedConfig{
		Port:     cfg.PubSub.EmbeddedPort,
		StoreDir: cfg.PubSub.StoreDir,
	})
	if err != nil {
		log.Errorw("embedded_nats_failed", "err", err)
		return nil
	}
	log.Infow("embedded_nats_started", "url", ns.ClientURL())
	return ns
}

// buildSupervisor collects the long-running background loops. Each one is
// restarted by suture if it returns before shutdown.
func buildSupervisor(cfg *config.Config, services *service.Service, embedded *pubsub.EmbeddedServer, log *logger.Logger) *suture.Supervisor {
	supLog := log.Named("supervisor")
	sup := suture.New("thermostat_hub", suture.Spec{
		EventHook: func(e suture.Event) {
			supLog.Warnw("supervisor_event", "event", e.String())
		},
	})

	sup.Add(service.NewRefreshScheduler(services.Devices, service.RefreshSchedulerOptions{
		Interval:        cfg.Refresh.Interval,
		InitialAttempts: cfg.Refresh.InitialAttempts,
		InitialBackoff:  cfg.Refresh.InitialBackoff,
	}, log.Named("scheduler")))

	sup.Add(service.NewWeatherRefresher(services.Weather, cfg.Weather.Freshness, log.Named("weather")))

	if cfg.Telemetry.Enabled {
		sup.Add(service.NewTelemetrySampler(services.Telemetry, cfg.Telemetry.Interval, log.Named("telemetry")))
	}

	if cfg.DemoMode || !cfg.PubSub.Enabled {
		log.Infow("change_events_disabled", "demo_mode", cfg.DemoMode)
		return sup
	}
	url := cfg.PubSub.URL
	if embedded != nil {
		url = embedded.ClientURL()
	}
	sub, err := pubsub.NewSubscriber(pubsub.SubscriberConfig{
		URL:          url,
		Subscription: cfg.PubSub.Subscription,
		AckWait:      cfg.PubSub.AckWait,
	}, log.Named("nats"))
	if err != nil {
		// periodic refresh keeps the snapshot current
		log.Errorw("subscriber_init_failed", "url", url, "err", err)
		return sup
	}
	sup.Add(pubsub.NewConsumer(sub, services.Events, pubsub.ConsumerOptions{
		Topic:      cfg.PubSub.Topic,
		MinBackoff: cfg.PubSub.MinBackoff,
		MaxBackoff: cfg.PubSub.MaxBackoff,
	}, log.Named("events")))
	return sup
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "3000"
		}
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background services
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
