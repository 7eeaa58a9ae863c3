package container

import (
	"errors"

	"go.uber.org/zap"
)

// ── Resolving ─────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
//
//	// Laravel: $app->make(Cache::class)
//	cache, err := c.Make(container.TypeOf[Cache]())
func (c *Container) Make(abstract any) (any, error) {
	return c.resolve(abstract, nil, true)
}

// MakeWith resolves an abstract with ad-hoc parameters. Parameters override
// constructor arguments by name and bypass the shared instance cache.
//
//	// Laravel: $app->makeWith(Report::class, ['id' => 42])
//	report, err := c.MakeWith(container.TypeOf[*Report](), container.Params{"id": 42})
func (c *Container) MakeWith(abstract any, params Params) (any, error) {
	return c.resolve(abstract, params, true)
}

// Get resolves id, reporting an EntryNotFoundError when id is unknown to the
// container and could not be built.
func (c *Container) Get(id any) (any, error) {
	instance, err := c.Make(id)
	if err == nil {
		return instance, nil
	}
	var cyclic *CyclicDependencyError
	if c.Has(id) || errors.As(err, &cyclic) {
		return nil, err
	}
	return nil, &EntryNotFoundError{ID: Name(id), Cause: err}
}

// Factory returns a function that resolves abstract when called.
//
//	// Laravel: $app->factory(Mailer::class)
func (c *Container) Factory(abstract any) func() (any, error) {
	return func() (any, error) { return c.Make(abstract) }
}

func (c *Container) resolve(abstract any, params Params, raiseEvents bool) (any, error) {
	abstract, err := c.aliases.get(abstract)
	if err != nil {
		return nil, err
	}
	if c.isDeferred(abstract) {
		if err := c.deferred.LoadDeferred(abstract); err != nil {
			return nil, err
		}
	}
	if len(c.resolving) >= c.maxDepth {
		return nil, &CyclicDependencyError{Path: names(append(tail(c.resolving, 8), abstract))}
	}
	c.resolving = append(c.resolving, abstract)
	defer func() { c.resolving = c.resolving[:len(c.resolving)-1] }()

	instance, err := c.resolveAbstract(abstract, params, raiseEvents)
	if err != nil && len(c.resolving) == 1 {
		c.logger.Debug("container: resolve failed", zap.String("abstract", Name(abstract)), zap.Error(err))
	}
	return instance, err
}

func (c *Container) resolveAbstract(abstract any, params Params, raiseEvents bool) (any, error) {
	if raiseEvents {
		c.fireBeforeResolving(abstract, params)
	}

	concrete, contextual := c.contextualConcrete(abstract)
	needsContextualBuild := len(params) > 0 || contextual

	// Shared instances are only returned when nothing about this resolution
	// is call specific.
	if instance, ok := c.shared.get(abstract); ok && !needsContextualBuild {
		return instance, nil
	}

	c.with = append(c.with, params.clone())
	defer func() { c.with = c.with[:len(c.with)-1] }()

	if !contextual {
		concrete = c.concrete(abstract)
	}

	var (
		instance any
		err      error
	)
	switch {
	case isFactory(concrete), isIdentifier(concrete) && concrete == abstract:
		instance, err = c.build(concrete)
	case isIdentifier(concrete):
		instance, err = c.Make(concrete)
	default:
		err = &NotInstantiableError{Concrete: Name(abstract), BuildStack: names(c.buildStack)}
	}
	if err != nil {
		return nil, err
	}

	instance = c.extenders.apply(abstract, instance, c)

	if c.IsShared(abstract) && !needsContextualBuild {
		c.shared.set(abstract, instance)
	}
	if raiseEvents {
		c.fireResolving(abstract, instance)
	}
	c.resolved[abstract] = true
	return instance, nil
}

// concrete returns the bound factory, or abstract itself when unbound.
func (c *Container) concrete(abstract any) any {
	if b, ok := c.bindings[abstract]; ok {
		return b.factory
	}
	return abstract
}

func isFactory(v any) bool {
	_, ok := v.(Factory)
	return ok
}

func tail(ids []any, n int) []any {
	if len(ids) <= n {
		return append([]any(nil), ids...)
	}
	return append([]any(nil), ids[len(ids)-n:]...)
}
