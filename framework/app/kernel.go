package app

import (
	"net/http"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/config"
	"github.com/km-arc/go-laravel-container/framework/container"
	"github.com/km-arc/go-laravel-container/framework/providers"
	"github.com/km-arc/go-laravel-container/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly,
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	// The container is single-flow; dispatches are serialized.
	mu sync.Mutex
}

// New creates and bootstraps the application from the given .env files.
func New(envFiles ...string) (*Application, error) {
	return NewWithConfig(config.Load(envFiles...))
}

// NewWithConfig creates the application around an existing configuration.
func NewWithConfig(cfg *config.Repository) (*Application, error) {
	logger, err := providers.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	c := container.New(
		container.WithLogger(logger),
		container.WithMaxDepth(cfg.Int("container.max_depth", 0)),
	)
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
	}

	// Register framework core providers (same order as Laravel)
	err = multierr.Combine(
		c.Instance("app", app),
		app.Providers.RegisterAll(
			&providers.ConfigServiceProvider{Config: cfg},
			&providers.LogServiceProvider{Logger: logger},
			&providers.RoutingServiceProvider{Dispatcher: app},
		),
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Dispatch calls action through the container. Scoped instances are
// forgotten once the call returns.
func (a *Application) Dispatch(action any, params container.Params) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.ForgetScopedInstances()
	return a.Call(action, params)
}

// Config resolves *config.Repository from the container.
func (a *Application) Config() *config.Repository {
	return container.MustResolve[*config.Repository](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

// Logger resolves *zap.Logger from the container.
func (a *Application) Logger() *zap.Logger {
	return container.MustResolve[*zap.Logger](a.Container, "log")
}

// Handler boots the application if needed and returns the HTTP handler.
func (a *Application) Handler() (http.Handler, error) {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return nil, err
		}
	}
	return a.Router(), nil
}

// Run boots the application (if needed) and starts the HTTP server.
func (a *Application) Run() error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	cfg := a.Config()
	addr := ":" + cfg.String("app.port", "8000")
	a.Logger().Info("application started",
		zap.String("name", cfg.String("app.name", "")),
		zap.String("addr", addr),
		zap.String("env", a.Environment()))
	return http.ListenAndServe(addr, handler)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().String("app.env", "local") }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().Bool("app.debug", false) }
func (a *Application) Version() string     { return "0.1.0" }
