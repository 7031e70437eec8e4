package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eshtarek/storefront/modules/storefront"
	"github.com/eshtarek/storefront/pkg/clientip"
	"github.com/eshtarek/storefront/pkg/config"
	"github.com/eshtarek/storefront/pkg/httpserver"
	"github.com/eshtarek/storefront/pkg/i18n"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/metrics"
	"github.com/eshtarek/storefront/pkg/ratelimiter"
	"github.com/eshtarek/storefront/pkg/redis"
	"github.com/eshtarek/storefront/pkg/requestid"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Name    string `env:"APP_NAME" envDefault:"storefront"`
	EnvFile string `env:"APP_ENV_FILE"`

	// RateLimit turns on throttling of page actions.
	RateLimit bool `env:"STOREFRONT_RATE_LIMIT" envDefault:"true"`
	// Metrics exposes /metrics.
	Metrics bool `env:"STOREFRONT_METRICS" envDefault:"true"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("storefront stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	if app.EnvFile != "" {
		if err := config.LoadEnv(app.EnvFile); err != nil {
			return err
		}
		config.ResetCache()
		if err := config.Load(&app); err != nil {
			return err
		}
	}

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	logOpts, err := logCfg.Options()
	if err != nil {
		return err
	}
	log := logger.New(append([]logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}, logOpts...)...)
	logger.SetAsDefault(log)

	var (
		cfg      storefront.Config
		httpCfg  httpserver.Config
		redisCfg redis.Config
		rateCfg  ratelimiter.Config
	)
	if err := errors.Join(
		config.Load(&cfg),
		config.Load(&httpCfg),
		config.Load(&redisCfg),
		config.Load(&rateCfg),
	); err != nil {
		return err
	}

	tr, err := translator(ctx, cfg.TranslationsFile, log)
	if err != nil {
		return err
	}

	opts := []storefront.Option{storefront.WithLogger(log)}
	var checks []httpserver.Check

	var store ratelimiter.Store
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		checks = append(checks, redis.Healthcheck(client))
		store = ratelimiter.NewRedisStore(client)
		log.Info("redis connected")
	}

	if app.RateLimit {
		if store == nil {
			store = ratelimiter.NewMemoryStore()
		}
		bucket, err := ratelimiter.NewBucket(store, rateCfg)
		if err != nil {
			return err
		}
		opts = append(opts, storefront.WithRateLimiter(bucket))
	}

	r := chi.NewRouter()
	if app.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, storefront.WithMetrics(metrics.MustNew(reg)))
		r.Handle("/metrics", metrics.Handler(reg))
	}

	shop := storefront.New(cfg, tr, opts...)
	defer shop.Close()

	checks = append(checks, shop.Ready)
	r.Get("/healthz", httpserver.HealthCheckHandler(log, checks...))
	r.Mount("/", shop.Handle())

	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.OnShutdown(func() { _ = shop.Close() }),
	)
	return srv.Run(ctx, r)
}

// translator merges the built-in catalog with an optional override file.
func translator(ctx context.Context, file string, log *slog.Logger) (*i18n.Translator, error) {
	catalog := i18n.Builtin()
	if file != "" {
		extra, err := i18n.Load(ctx, os.DirFS(filepath.Dir(file)), filepath.Base(file))
		if err != nil {
			return nil, err
		}
		catalog = i18n.Merge(catalog, extra)
	}
	return i18n.NewTranslator(catalog,
		i18n.WithDefaultLanguage("ar"),
		i18n.WithLogger(log),
	), nil
}
