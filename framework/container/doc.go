// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient, shared and scoped bindings, pre-built
// instances, aliases, tags, contextual bindings, extenders, method invocation
// with injected arguments, and resolution callbacks.
//
// Identifiers are strings, *Token values, reflect.Type values (see TypeOf) or
// any other comparable, non-func value.
//
// Go has no runtime parameter names, so constructors are described up front:
//
//	c.Define(NewSMTPMailer, container.Arg("host"), container.Arg("port").Default(25))
//
// Structs and pointers to structs without a constructor are built bare.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()
//  4. Serve requests
//
// # Bindings
//
//	// Laravel: $app->bind(Mailer::class, SmtpMailer::class)
//	c.Bind(container.TypeOf[Mailer](), container.TypeOf[*SMTPMailer]())
//
//	// Laravel: $app->singleton('cache', fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    return cache.NewRedis(container.MustResolve[*config.Repository](c, "config"))
//	})
//
//	// Laravel: $app->instance('config', $config)
//	c.Instance("config", cfg)
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias(container.TypeOf[Cache](), "cache")
//
// # Resolving
//
//	raw, err := c.Make("cache")
//	report, err := c.MakeWith(container.TypeOf[*Report](), container.Params{"id": 42})
//	mailer, err := container.ResolveType[Mailer](c)
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(S3::class)
//	c.When(container.TypeOf[*PhotoController]()).
//	    Needs(container.TypeOf[Filesystem]()).
//	    Give(container.TypeOf[*S3Filesystem]())
//
//	c.When(container.TypeOf[*SMTPMailer]()).Needs("$host").GiveConfig("mail.host", "localhost")
//
// # Tags
//
//	c.Tag([]any{container.TypeOf[*CPUReport](), container.TypeOf[*MemoryReport]()}, "reports")
//	for report, err := range c.Tagged("reports").All() { ... }
//
// # Calling
//
//	c.Call("users@Show", container.Params{"id": "7"})
//	c.Call(container.Method(controller, "Show"), nil)
//	c.Call(func(m Mailer) error { return m.Send("hi") }, nil)
//
// # Service Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool { return true }
//	func (p *HeavyProvider) Provides() []any  { return []any{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    return app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
//
// A Container is not safe for concurrent use.
package container
