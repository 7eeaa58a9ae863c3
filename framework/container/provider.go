package container

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Boot is called after every provider has been registered, making it safe to
// resolve other bindings inside Boot.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return app.Singleton(container.TypeOf[Mailer](), container.TypeOf[*SMTPMailer]())
//	}
type ServiceProvider interface {
	// Register binds services into the container. Do not resolve other
	// bindings here, use Boot for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the abstracts a deferred provider registers.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []any

	// IsDeferred returns true if the provider should only be registered when
	// one of its Provides() abstracts is first resolved.
	//
	//	// Laravel: class CacheProvider extends ServiceProvider implements DeferrableProvider
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op implementations of Boot,
// Provides and IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []any         { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred providers.
//
// It mirrors Laravel's Application::registerConfiguredProviders and
// Application::bootProviders.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[any]ServiceProvider // abstract → provider not loaded yet
	loaded     map[ServiceProvider]bool
	registered map[ServiceProvider]bool
	booted     bool
}

// deferredServices lets the container load deferred providers on demand.
type deferredServices interface {
	IsDeferredService(abstract any) bool
	LoadDeferred(abstract any) error
}

// NewProviderRegistry creates a registry bound to app. The registry becomes
// the deferred-provider loader of app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	r := &ProviderRegistry{
		app:        app,
		deferred:   make(map[any]ServiceProvider),
		loaded:     make(map[ServiceProvider]bool),
		registered: make(map[ServiceProvider]bool),
	}
	app.deferred = r
	return r
}

// Register adds a provider and calls its Register method unless it is
// deferred. A provider registered after Boot is booted immediately.
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		return r.registerDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return err
	}
	r.eager = append(r.eager, provider)
	r.app.logger.Debug("container: provider registered", zap.String("provider", providerName(provider)))

	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// RegisterAll registers providers in order and returns every failure.
func (r *ProviderRegistry) RegisterAll(providers ...ServiceProvider) error {
	var err error
	for _, p := range providers {
		err = multierr.Append(err, r.Register(p))
	}
	return err
}

// registerDeferred records the abstracts of a deferred provider. The
// container loads the provider before the first resolution of any of them.
func (r *ProviderRegistry) registerDeferred(provider ServiceProvider) error {
	for _, abstract := range provider.Provides() {
		if !isIdentifier(abstract) {
			return &BindingError{Abstract: Name(abstract), Reason: "deferred provider " + providerName(provider) + " provides a non-identifier"}
		}
		r.deferred[abstract] = provider
	}
	return nil
}

// LoadDeferred registers the deferred provider of abstract, if any. It fails
// when the provider did not bind abstract.
func (r *ProviderRegistry) LoadDeferred(abstract any) error {
	provider, ok := r.deferred[abstract]
	if !ok {
		return nil
	}
	if err := r.load(provider); err != nil {
		return err
	}
	if !r.app.Bound(abstract) {
		return &BindingError{
			Abstract: Name(abstract),
			Reason:   "deferred provider " + providerName(provider) + " did not bind it",
		}
	}
	return nil
}

func (r *ProviderRegistry) load(provider ServiceProvider) error {
	if r.loaded[provider] {
		return nil
	}
	r.loaded[provider] = true
	for _, abstract := range provider.Provides() {
		delete(r.deferred, abstract)
	}
	if err := provider.Register(r.app); err != nil {
		return err
	}
	r.eager = append(r.eager, provider)
	r.app.logger.Debug("container: deferred provider loaded", zap.String("provider", providerName(provider)))
	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// IsDeferredService reports whether abstract belongs to a deferred provider
// that has not been loaded yet.
func (r *ProviderRegistry) IsDeferredService(abstract any) bool {
	_, ok := r.deferred[abstract]
	return ok
}

// Boot calls Boot on all eager providers once. Every failure is returned.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	var err error
	for _, provider := range r.eager {
		err = multierr.Append(err, provider.Boot(r.app))
	}
	return err
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers, deferred ones once loaded.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

func providerName(p ServiceProvider) string { return fmt.Sprintf("%T", p) }
