package container

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a concrete value. p holds the ad-hoc parameters of the
// current Make call; it is never nil.
type Factory func(c *Container, p Params) (any, error)

// binding holds a registered factory and whether its result is shared.
type binding struct {
	factory Factory
	shared  bool
}

// Extender decorates a resolved instance.
type Extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container, modelled on Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Scoped / Instance / Alias
//   - Make / MakeWith / Get and the generic Resolve helpers
//   - constructor injection of types described by the Reflector
//   - Tags (lazy, single-pass groups)
//   - Extend (decorate resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Call (method invocation with injected arguments) and BindMethod
//   - Rebinding, BeforeResolving, Resolving and AfterResolving callbacks
//
// A Container is single-flow: the build-path and parameter stacks are
// instance state, so it must not be used from several goroutines at once.
type Container struct {
	reflector Reflector
	logger    *zap.Logger
	maxDepth  int

	// abstract → binding
	bindings map[any]*binding

	// abstract → resolved at least once
	resolved map[any]bool

	aliases    *aliaser
	shared     *instanceSharer
	contextual *contextualBinder
	extenders  *extenderChain
	tags       *tagger
	methods    *methodBinder
	callbacks  *callbacks

	// set by a ProviderRegistry; loads deferred providers before resolution
	deferred deferredServices

	// types currently being constructed (for contextual lookup and errors)
	buildStack []any

	// abstracts currently being resolved (depth guard)
	resolving []any

	// one Params per in-flight resolve; only the top is active
	with []Params
}

// New creates an empty container. The container is registered as an instance
// of itself under "container" and TypeOf[*Container]().
func New(opts ...Option) *Container {
	c := &Container{
		reflector:  NewTypeRegistry(),
		logger:     zap.NewNop(),
		maxDepth:   DefaultMaxDepth,
		bindings:   make(map[any]*binding),
		resolved:   make(map[any]bool),
		aliases:    newAliaser(),
		shared:     newInstanceSharer(),
		contextual: newContextualBinder(),
		extenders:  newExtenderChain(),
		tags:       newTagger(),
		methods:    newMethodBinder(),
		callbacks:  newCallbacks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registerSelf()
	return c
}

func (c *Container) registerSelf() {
	self := TypeOf[*Container]()
	c.shared.set(self, c)
	c.aliases.add(self, "container")
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient binding: every Make builds a new value.
//
// concrete is a factory, another identifier to resolve in its place, or nil
// to build the abstract itself.
//
//	// Laravel: $app->bind(UserRepository::class, EloquentUserRepository::class)
//	c.Bind(container.TypeOf[UserRepository](), container.TypeOf[*EloquentUserRepository]())
//	c.Bind("clock", func(c *container.Container, _ container.Params) (any, error) {
//	    return time.Now, nil
//	})
func (c *Container) Bind(abstract, concrete any) error {
	return c.bind(abstract, concrete, false)
}

// BindIf registers a transient binding unless the abstract is already bound.
func (c *Container) BindIf(abstract, concrete any) error {
	if c.Bound(abstract) {
		return nil
	}
	return c.bind(abstract, concrete, false)
}

// Singleton registers a shared binding whose result is cached after the first
// Make without parameters.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract, concrete any) error {
	return c.bind(abstract, concrete, true)
}

// SingletonIf registers a shared binding unless the abstract is already bound.
func (c *Container) SingletonIf(abstract, concrete any) error {
	if c.Bound(abstract) {
		return nil
	}
	return c.bind(abstract, concrete, true)
}

// Scoped registers a shared binding that ForgetScopedInstances drops.
func (c *Container) Scoped(abstract, concrete any) error {
	if err := c.bind(abstract, concrete, true); err != nil {
		return err
	}
	c.shared.markScoped(abstract)
	return nil
}

// ScopedIf registers a scoped binding unless the abstract is already bound.
func (c *Container) ScopedIf(abstract, concrete any) error {
	if c.Bound(abstract) {
		return nil
	}
	return c.Scoped(abstract, concrete)
}

// bind is the internal registration helper.
func (c *Container) bind(abstract, concrete any, shared bool) error {
	if !isIdentifier(abstract) {
		return &BindingError{Abstract: fmt.Sprintf("%T", abstract), Reason: "identifier must be a comparable, non-func value"}
	}
	if concrete == nil {
		if !c.isConstructible(abstract) {
			return &BindingError{Abstract: Name(abstract), Reason: "no concrete given and the target is not instantiable"}
		}
		concrete = abstract
	}
	factory, ok := asFactory(concrete)
	if !ok {
		if !isIdentifier(concrete) {
			return &BindingError{Abstract: Name(abstract), Reason: fmt.Sprintf("concrete %T is neither a factory nor an identifier", concrete)}
		}
		factory = c.closure(abstract, concrete)
	}

	// Drop existing instance and alias so the abstract is rebuilt with the new binding
	c.shared.forget(abstract)
	c.aliases.forget(abstract)

	c.bindings[abstract] = &binding{factory: factory, shared: shared}
	c.logger.Debug("container: bound",
		zap.String("abstract", Name(abstract)), zap.Bool("shared", shared))

	if c.Resolved(abstract) {
		return c.rebound(abstract)
	}
	return nil
}

// closure wraps an identifier concrete: the abstract itself is built, anything
// else is resolved in its place without raising resolving events.
func (c *Container) closure(abstract, concrete any) Factory {
	return func(c *Container, p Params) (any, error) {
		if abstract == concrete {
			return c.build(concrete)
		}
		return c.resolve(concrete, p, false)
	}
}

func (c *Container) isConstructible(abstract any) bool {
	t, ok := abstract.(reflect.Type)
	if !ok {
		return false
	}
	_, ok = c.reflector.Constructor(t)
	return ok
}

// Set binds abstract to value: factories are bound as-is, any other value is
// returned on every Make.
func (c *Container) Set(abstract, value any) error {
	if f, ok := asFactory(value); ok {
		return c.Bind(abstract, f)
	}
	return c.Bind(abstract, valueFactory(value))
}

// Unbind removes the binding, cached instance and resolved flag of an abstract.
func (c *Container) Unbind(abstract any) {
	delete(c.bindings, abstract)
	delete(c.resolved, abstract)
	c.shared.forget(abstract)
}

// ── Type definitions ──────────────────────────────────────────────────────────

type definer interface {
	Define(ctor any, args ...ArgSpec) error
	DefineMethod(target any, method string, args ...ArgSpec) error
	DefineFunc(fn any, args ...ArgSpec) error
}

// Define registers a constructor with the container's reflector.
//
//	c.Define(NewMailer, container.Arg("host"), container.Arg("port").Default(25))
//	mailer, err := container.ResolveType[*Mailer](c)
func (c *Container) Define(ctor any, args ...ArgSpec) error {
	d, ok := c.reflector.(definer)
	if !ok {
		return &DescriptorError{Target: fmt.Sprintf("%T", ctor), Reason: "reflector does not accept definitions"}
	}
	return d.Define(ctor, args...)
}

// DefineMethod names the parameters of a method invoked through Call.
func (c *Container) DefineMethod(target any, method string, args ...ArgSpec) error {
	d, ok := c.reflector.(definer)
	if !ok {
		return &DescriptorError{Target: fmt.Sprintf("%T", target), Reason: "reflector does not accept definitions"}
	}
	return d.DefineMethod(target, method, args...)
}

// DefineFunc names the parameters of a function invoked through Call.
func (c *Container) DefineFunc(fn any, args ...ArgSpec) error {
	d, ok := c.reflector.(definer)
	if !ok {
		return &DescriptorError{Target: fmt.Sprintf("%T", fn), Reason: "reflector does not accept definitions"}
	}
	return d.DefineFunc(fn, args...)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether an abstract has a binding, a shared instance or is an alias.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract any) bool {
	if !isIdentifier(abstract) {
		return false
	}
	_, hasBinding := c.bindings[abstract]
	return hasBinding || c.shared.has(abstract) || c.aliases.isAlias(abstract) || c.isDeferred(abstract)
}

func (c *Container) isDeferred(abstract any) bool {
	return c.deferred != nil && c.deferred.IsDeferredService(abstract)
}

// Has is an alias of Bound.
func (c *Container) Has(abstract any) bool { return c.Bound(abstract) }

// Resolved reports whether the abstract has been resolved at least once.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract any) bool {
	if !isIdentifier(abstract) {
		return false
	}
	if c.aliases.isAlias(abstract) {
		abstract = c.key(abstract)
	}
	return c.resolved[abstract] || c.shared.has(abstract)
}

// IsShared reports whether Make returns a cached value for the abstract.
func (c *Container) IsShared(abstract any) bool {
	if c.shared.has(abstract) {
		return true
	}
	b, ok := c.bindings[abstract]
	return ok && b.shared
}

// Flush resets bindings, instances, aliases and resolved flags. The container
// still resolves itself afterwards.
func (c *Container) Flush() {
	c.bindings = make(map[any]*binding)
	c.resolved = make(map[any]bool)
	c.aliases.reset()
	c.shared.reset()
	c.registerSelf()
}

// Bindings returns the sorted names of all registered abstracts (for debugging).
func (c *Container) Bindings() []string {
	seen := make(map[string]bool, len(c.bindings))
	out := make([]string, 0, len(c.bindings)+len(c.shared.instances))
	for k := range c.bindings {
		seen[Name(k)] = true
		out = append(out, Name(k))
	}
	for k := range c.shared.instances {
		if !seen[Name(k)] {
			out = append(out, Name(k))
		}
	}
	sort.Strings(out)
	return out
}

// key returns the canonical identifier, or abstract itself if its alias chain
// is broken.
func (c *Container) key(abstract any) any {
	k, err := c.aliases.get(abstract)
	if err != nil {
		return abstract
	}
	return k
}

// asFactory normalizes the accepted factory shapes.
func asFactory(v any) (Factory, bool) {
	switch f := v.(type) {
	case Factory:
		return f, f != nil
	case func(*Container, Params) (any, error):
		return f, f != nil
	case func(*Container) (any, error):
		if f == nil {
			return nil, false
		}
		return func(c *Container, _ Params) (any, error) { return f(c) }, true
	case func(*Container) any:
		if f == nil {
			return nil, false
		}
		return func(c *Container, _ Params) (any, error) { return f(c), nil }, true
	}
	return nil, false
}

func valueFactory(v any) Factory {
	return func(_ *Container, _ Params) (any, error) { return v, nil }
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	// Instead of: v, _ := c.Make("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract any) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Abstract: Name(abstract),
			Expected: TypeOf[T]().String(),
			Actual:   fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// ResolveType resolves the identifier TypeOf[T]().
func ResolveType[T any](c *Container) (T, error) {
	return Resolve[T](c, TypeOf[T]())
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, abstract any) T {
	typed, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}
