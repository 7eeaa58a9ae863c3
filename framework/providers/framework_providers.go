package providers

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/config"
	"github.com/km-arc/go-laravel-container/framework/container"
	"github.com/km-arc/go-laravel-container/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration into the
// container as "config".
//
// Bound abstracts:
//   - "config"                        → *config.Repository
//   - "configuration", *config.Repository (aliases)
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->instance('config', $config = new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Repository // used as-is when set
	EnvFiles []string
	Dir      string // optional directory of YAML config files
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	if p.Dir != "" {
		if err := cfg.LoadDir(p.Dir); err != nil {
			return err
		}
	}
	return multierr.Combine(
		app.Instance("config", cfg),
		app.Alias("config", "configuration"),
		app.Alias("config", container.TypeOf[*config.Repository]()),
	)
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the application logger.
//
// Bound abstracts:
//   - "log"                 → *zap.Logger
//   - *zap.Logger (alias)
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger // built from "config" when nil
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		return multierr.Combine(
			app.Instance("log", p.Logger),
			app.Alias("log", container.TypeOf[*zap.Logger]()),
		)
	}
	return multierr.Combine(
		app.Singleton("log", func(c *container.Container) (any, error) {
			cfg, err := container.Resolve[*config.Repository](c, "config")
			if err != nil {
				return nil, err
			}
			return NewLogger(cfg)
		}),
		app.Alias("log", container.TypeOf[*zap.Logger]()),
	)
}

// NewLogger builds a zap logger for the configured environment: production
// JSON logging for "production", a no-op logger for "testing", development
// console logging otherwise. The level comes from "log.level".
func NewLogger(cfg *config.Repository) (*zap.Logger, error) {
	env := cfg.String("app.env", "local")
	if env == "testing" {
		return zap.NewNop(), nil
	}

	zcfg := zap.NewDevelopmentConfig()
	if env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if level := cfg.String("log.level", ""); level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = lvl
	}
	return zcfg.Build(zap.Fields(zap.String("app", cfg.String("app.name", "GoLaravel"))))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
//   - *routing.Router (alias)
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
	Dispatcher routing.Dispatcher
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	dispatcher := p.Dispatcher
	return multierr.Combine(
		app.Singleton("router", func(c *container.Container) (any, error) {
			logger, err := container.Resolve[*zap.Logger](c, "log")
			if err != nil {
				return nil, err
			}
			return routing.New(dispatcher, logger), nil
		}),
		app.Alias("router", container.TypeOf[*routing.Router]()),
	)
}
