package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/pokedex/internal/ops"
	"github.com/Sternrassler/pokedex/pkg/client"
	"github.com/Sternrassler/pokedex/pkg/config"
	"github.com/Sternrassler/pokedex/pkg/logging"
	"github.com/Sternrassler/pokedex/pkg/pagination"
	"github.com/Sternrassler/pokedex/pkg/pokeapi"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	"github.com/rs/zerolog"
)

// app is the wired object graph behind every command.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	api     *client.Client
	session *viewer.Session
	closers []func() error
}

// newApp loads configuration and wires logging, the response cache, the
// upstream client, the fetch adapter, a session and, when configured, the
// ops listener. logs receives the log output unless a log file is
// configured; nil discards it.
func newApp(ctx context.Context, flags *rootFlags, logs io.Writer) (*app, error) {
	// Step 1: Configuration
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, err
	}
	if flags.opsAddr != "" {
		cfg.Ops.Addr = flags.opsAddr
	}
	if flags.verbose {
		cfg.Log.Level = string(logging.LevelDebug)
	}

	a := &app{cfg: cfg}

	// Step 2: Logging
	logCfg := cfg.Logging()
	if cfg.Log.File != "" {
		logger, closeLog, err := logging.SetupFile(logCfg, cfg.Log.File)
		if err != nil {
			return nil, err
		}
		a.logger = logger
		a.closers = append(a.closers, closeLog)
	} else {
		if logs == nil {
			logs = io.Discard
		}
		logCfg.Output = logs
		a.logger = logging.Setup(logCfg)
	}

	// Step 3: Response cache
	store, closeStore, err := cfg.NewStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	// Step 4: Upstream client and fetch adapter
	api, err := client.New(cfg.Client(store))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	a.api = api
	a.closers = append(a.closers, api.Close)

	fetcher := pokeapi.NewFetcher(api, pagination.NewPool(cfg.Pool()))
	a.session = viewer.NewSession(fetcher, cfg.Session())
	a.closers = append(a.closers, func() error {
		a.session.Close()
		return nil
	})

	// Step 5: Ops listener
	if cfg.Ops.Addr != "" {
		srv := ops.New(cfg.Ops.Addr, a.session.Snapshot)
		if _, err := srv.Start(); err != nil {
			a.Close()
			return nil, fmt.Errorf("start ops listener: %w", err)
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	a.logger.Debug().
		Str("session_id", a.session.ID()).
		Str("base_url", cfg.API.BaseURL).
		Str("cache", cfg.Cache.Backend).
		Msg("Pokedex ready")

	return a, nil
}

// Close releases everything newApp acquired, in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
