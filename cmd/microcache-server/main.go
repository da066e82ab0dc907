package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/infra/buildinfo"
	"github.com/yndnr/microcache-go/internal/infra/confloader"
	"github.com/yndnr/microcache-go/internal/infra/shutdown"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
	"github.com/yndnr/microcache-go/internal/server/config"
	"github.com/yndnr/microcache-go/internal/server/httpserver"
	"github.com/yndnr/microcache-go/internal/server/httpserver/handler"
	"github.com/yndnr/microcache-go/internal/storage/memory"
	"github.com/yndnr/microcache-go/internal/telemetry/logger"
	"github.com/yndnr/microcache-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Cache protocol address (overrides server.addr)")
		adminAddr   = flag.String("admin", "", "Admin HTTP address (overrides admin.addr)")
		logLevel    = flag.String("log-level", "", "Log level (overrides log.level)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("microcache-server %s\n", buildinfo.String())
		return nil
	}

	overrides := make(map[string]any)
	if *addr != "" {
		overrides["server.addr"] = *addr
	}
	if *adminAddr != "" {
		overrides["admin.addr"] = *adminAddr
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	loader := newLoader(*configFile, overrides)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting microcache-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	store := memory.New()
	reg := metric.NewRegistry()
	disp := dispatch.NewDispatcher()
	pool := dispatch.NewPool(disp, store,
		dispatch.WithSize(cfg.Server.Workers),
		dispatch.WithLogger(slogLogger),
		dispatch.WithObserver(reg),
	)
	reg.MustRegister(metric.NewStoreCollector(store, disp.Len))

	cache := cacheserver.New(cacheserver.FromSection(cfg.Server), disp, pool,
		cacheserver.WithLogger(slogLogger),
		cacheserver.WithMetrics(reg),
	)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	fatal := make(chan error, 2)

	// Hooks run in reverse order: admin first, then the cache server.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down cache server")
		return cache.Shutdown(ctx)
	})

	go func() {
		if err := cache.ListenAndServe(ctx); err != nil && !errors.Is(err, cacheserver.ErrServerClosed) {
			log.Error("cache server error", "error", err)
			fatal <- err
			shutdownHandler.Trigger()
		}
	}()

	if cfg.Admin.Addr != "" {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Sources: handler.Sources{
				Store:       store,
				Queue:       disp,
				Workers:     pool,
				Connections: cache.Connections(),
				Ready:       cache.Running,
				StartedAt:   time.Now(),
			},
			Metrics: reg.Handler(),
			Logger:  slogLogger,
		})
		admin := httpserver.New(cfg.Admin.Addr, router)

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin server")
			return admin.Shutdown(ctx)
		})

		go func() {
			log.Info("admin server listening", "addr", cfg.Admin.Addr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server error", "error", err)
				fatal <- err
				shutdownHandler.Trigger()
			}
		}()
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, overrides, log)
		if err != nil {
			log.Warn("config reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	shutdownErr := shutdownHandler.Wait(ctx)

	select {
	case err := <-fatal:
		return err
	default:
	}
	if shutdownErr != nil {
		log.Error("shutdown error", "error", shutdownErr)
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string, overrides map[string]any) *confloader.Loader {
	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig loads defaults, the file, the environment and the overrides,
// then validates the result.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reapplies log.level whenever the configuration file changes.
// Other settings need a restart.
func watchConfig(configFile string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(newLoader(configFile, overrides))
		if err != nil {
			log.Warn("ignoring invalid configuration change", "error", err)
			return
		}
		if strings.EqualFold(cfg.Log.Level, logger.GetLevel()) {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("log level not changed", "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}
