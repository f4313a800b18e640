package main

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel"

	"github.com/leofalp/cllm/internal/config"
	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/ai/gemini"
	"github.com/leofalp/cllm/providers/ai/middleware"
	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/memory/filestore"
	"github.com/leofalp/cllm/providers/memory/inmemory"
	"github.com/leofalp/cllm/providers/memory/journal"
	"github.com/leofalp/cllm/providers/memory/redisstore"
	"github.com/leofalp/cllm/providers/observability"
	"github.com/leofalp/cllm/providers/observability/otelobs"
	"github.com/leofalp/cllm/providers/observability/slogobs"
)

// app is the wired set of dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	model    string
	store    *journal.Store
	observer observability.Provider
	logger   *slogobs.Observer
	out      io.Writer
	closers  []func(context.Context) error
}

// withApp builds the app, runs fn and releases everything it opened.
func withApp(ctx context.Context, flags globalFlags, out io.Writer, fn func(*app) error) (err error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, model: cfg.Model, out: out}
	if flags.model != "" {
		a.model = flags.model
	}
	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	a.observer = a.newObserver()
	if a.store, err = a.newStore(ctx, flags.ephemeral); err != nil {
		return err
	}
	return fn(a)
}

func (a *app) newObserver() observability.Provider {
	logger := slogobs.New(
		slogobs.WithLevel(slogobs.ParseLevel(a.cfg.Log.Level)),
		slogobs.WithFormat(slogobs.ParseFormat(a.cfg.Log.Format)),
	)
	a.logger = logger
	if !a.cfg.Tracing {
		return logger
	}

	tracerProvider := otelobs.NewTracerProvider(logger)
	otel.SetTracerProvider(tracerProvider)
	a.closers = append(a.closers, tracerProvider.Shutdown)
	return otelobs.New(otelobs.WithTracerProvider(tracerProvider), otelobs.WithLogger(logger))
}

func (a *app) newStore(ctx context.Context, ephemeral bool) (*journal.Store, error) {
	var profile, traits memory.Container

	backend := a.cfg.Store
	if ephemeral {
		backend = config.StoreMemory
	}

	switch backend {
	case config.StoreMemory:
		profile, traits = inmemory.NewContainer("user_data"), inmemory.NewContainer("self_personality")
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Options{URL: a.cfg.Redis.URL})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		profile = redisstore.New(client, a.cfg.Redis.KeyPrefix+"user_data")
		traits = redisstore.New(client, a.cfg.Redis.KeyPrefix+"self_personality")
	default:
		profile, traits = filestore.New(a.cfg.ProfilePath()), filestore.New(a.cfg.SelfTraitPath())
	}

	a.observer.Debug(ctx, "memory store ready",
		observability.String(observability.AttrMemoryContainer, profile.Name()),
		observability.String(observability.AttrMemoryCollection, traits.Name()),
	)
	return journal.New(profile, traits, journal.WithObserver(a.observer)), nil
}

// provider returns the Gemini transport wrapped in request logging. The
// log detail follows the configured log level.
func (a *app) provider() (ai.StreamProvider, error) {
	if a.cfg.APIKey == "" {
		return nil, gemini.ErrMissingAPIKey
	}
	provider := gemini.New().WithAPIKey(a.cfg.APIKey)
	if a.model != "" {
		provider = provider.WithModel(a.model)
	}

	level := middleware.LogLevelStandard
	if slogobs.ParseLevel(a.cfg.Log.Level) <= slogobs.LevelTrace {
		level = middleware.LogLevelVerbose
	}
	return middleware.Chain(provider, middleware.NewLoggingMiddleware(a.logger.Logger(), level)), nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}
