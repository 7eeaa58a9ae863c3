package container

import (
	"reflect"

	"go.uber.org/zap"
)

// BeforeResolvingCallback runs before an abstract is resolved.
type BeforeResolvingCallback func(abstract any, p Params, c *Container)

// ResolvingCallback runs after an instance is built.
type ResolvingCallback func(instance any, c *Container)

// ReboundCallback runs when an already resolved abstract is bound again.
type ReboundCallback func(c *Container, instance any)

type typedBefore struct {
	abstract any
	fn       BeforeResolvingCallback
}

type typedResolving struct {
	abstract any
	fn       ResolvingCallback
}

type callbacks struct {
	globalBefore []BeforeResolvingCallback
	before       []typedBefore

	globalResolving []ResolvingCallback
	resolving       []typedResolving

	globalAfter []ResolvingCallback
	after       []typedResolving

	// canonical abstract → callbacks
	rebound map[any][]ReboundCallback
}

func newCallbacks() *callbacks {
	return &callbacks{rebound: make(map[any][]ReboundCallback)}
}

// ── Registration ──────────────────────────────────────────────────────────────

// BeforeResolving registers a callback fired before any abstract is resolved.
func (c *Container) BeforeResolving(fn BeforeResolvingCallback) {
	c.callbacks.globalBefore = append(c.callbacks.globalBefore, fn)
}

// BeforeResolvingFor registers a callback fired before abstract, or a type
// that satisfies it, is resolved.
func (c *Container) BeforeResolvingFor(abstract any, fn BeforeResolvingCallback) {
	c.callbacks.before = append(c.callbacks.before, typedBefore{abstract: c.key(abstract), fn: fn})
}

// Resolving registers a callback fired after any abstract is built.
//
//	// Laravel: $app->resolving(fn($object, $app) => ...)
func (c *Container) Resolving(fn ResolvingCallback) {
	c.callbacks.globalResolving = append(c.callbacks.globalResolving, fn)
}

// ResolvingFor registers a callback fired after abstract is built, or after
// any instance the reflector says satisfies abstract is built.
//
//	c.ResolvingFor(container.TypeOf[Cache](), func(cache any, c *container.Container) { ... })
func (c *Container) ResolvingFor(abstract any, fn ResolvingCallback) {
	c.callbacks.resolving = append(c.callbacks.resolving, typedResolving{abstract: c.key(abstract), fn: fn})
}

// AfterResolving registers a callback fired after the resolving callbacks.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(fn ResolvingCallback) {
	c.callbacks.globalAfter = append(c.callbacks.globalAfter, fn)
}

// AfterResolvingFor is the per-abstract form of AfterResolving.
func (c *Container) AfterResolvingFor(abstract any, fn ResolvingCallback) {
	c.callbacks.after = append(c.callbacks.after, typedResolving{abstract: c.key(abstract), fn: fn})
}

// Rebinding registers a callback fired whenever abstract is bound again after
// being resolved. If abstract is already bound its current instance is returned.
//
//	// Laravel: $app->rebinding('request', fn($app, $request) => ...)
func (c *Container) Rebinding(abstract any, fn ReboundCallback) (any, error) {
	abstract, err := c.aliases.get(abstract)
	if err != nil {
		return nil, err
	}
	c.callbacks.rebound[abstract] = append(c.callbacks.rebound[abstract], fn)
	if c.Bound(abstract) {
		return c.Make(abstract)
	}
	return nil, nil
}

// Refresh calls target's method with the new instance whenever abstract is
// rebound. The method must take exactly one argument.
func (c *Container) Refresh(abstract, target any, method string) (any, error) {
	m := reflect.ValueOf(target).MethodByName(method)
	if !m.IsValid() {
		return nil, &MissingMethodError{Target: reflect.TypeOf(target).String(), Method: method}
	}
	if m.Type().NumIn() != 1 {
		return nil, &DescriptorError{Target: MethodKey(target, method), Reason: "refresh method must take one argument"}
	}
	return c.Rebinding(abstract, func(c *Container, instance any) {
		arg, err := argValue(method, instance, m.Type().In(0))
		if err != nil {
			c.logger.Debug("container: refresh skipped", zap.String("method", MethodKey(target, method)), zap.Error(err))
			return
		}
		m.Call([]reflect.Value{arg})
	})
}

// ── Firing ────────────────────────────────────────────────────────────────────

func (c *Container) rebound(abstract any) error {
	cbs := c.callbacks.rebound[abstract]
	if len(cbs) == 0 {
		return nil
	}
	instance, err := c.Make(abstract)
	if err != nil {
		return err
	}
	c.logger.Debug("container: rebound", zap.String("abstract", Name(abstract)), zap.Int("callbacks", len(cbs)))
	for _, fn := range cbs {
		fn(c, instance)
	}
	return nil
}

func (c *Container) fireBeforeResolving(abstract any, p Params) {
	for _, fn := range c.callbacks.globalBefore {
		fn(abstract, p, c)
	}
	for _, cb := range c.callbacks.before {
		if cb.abstract == abstract || typeSatisfies(abstract, cb.abstract) {
			cb.fn(abstract, p, c)
		}
	}
}

func (c *Container) fireResolving(abstract, instance any) {
	for _, fn := range c.callbacks.globalResolving {
		fn(instance, c)
	}
	c.fireTyped(c.callbacks.resolving, abstract, instance)
	for _, fn := range c.callbacks.globalAfter {
		fn(instance, c)
	}
	c.fireTyped(c.callbacks.after, abstract, instance)
}

func (c *Container) fireTyped(cbs []typedResolving, abstract, instance any) {
	for _, cb := range cbs {
		if cb.abstract == abstract || c.reflector.Satisfies(instance, cb.abstract) {
			cb.fn(instance, c)
		}
	}
}

// typeSatisfies reports whether abstract is a type implementing or assignable
// to the registered type.
func typeSatisfies(abstract, registered any) bool {
	a, ok := abstract.(reflect.Type)
	if !ok {
		return false
	}
	r, ok := registered.(reflect.Type)
	if !ok {
		return false
	}
	if r.Kind() == reflect.Interface {
		return a.Implements(r)
	}
	return a.AssignableTo(r)
}
