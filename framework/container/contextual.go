package container

import "fmt"

// ConfigRepository is the view of the "config" binding used by GiveConfig.
type ConfigRepository interface {
	Get(key string, def any) any
}

// contextualBinder holds contextual overrides:
// table[concrete being built][needed abstract] = implementation.
type contextualBinder struct {
	table map[any]map[any]any
}

func newContextualBinder() *contextualBinder {
	return &contextualBinder{table: make(map[any]map[any]any)}
}

func (b *contextualBinder) add(concrete, abstract, implementation any) {
	if _, ok := b.table[concrete]; !ok {
		b.table[concrete] = make(map[any]any)
	}
	b.table[concrete][abstract] = implementation
}

func (b *contextualBinder) find(concrete, abstract any) (any, bool) {
	impl, ok := b.table[concrete][abstract]
	return impl, ok
}

// AddContextualBinding registers implementation for abstract while concrete
// is being built. implementation is a factory, an identifier, or a []any of
// identifiers for variadic parameters. Primitive parameters are addressed as
// "$" + parameter name.
func (c *Container) AddContextualBinding(concrete, abstract, implementation any) error {
	if implementation == nil {
		return &BindingError{Abstract: Name(abstract), Reason: "contextual implementation is nil"}
	}
	concrete, err := c.aliases.get(concrete)
	if err != nil {
		return err
	}
	abstract, err = c.aliases.get(abstract)
	if err != nil {
		return err
	}
	if f, ok := asFactory(implementation); ok {
		implementation = f
	} else if _, isList := implementation.([]any); !isList && !isIdentifier(implementation) {
		implementation = valueFactory(implementation)
	}
	c.contextual.add(concrete, abstract, implementation)
	return nil
}

// contextualConcrete looks up abstract for the type on top of the build
// stack, falling back to the aliases of abstract in registration order.
func (c *Container) contextualConcrete(abstract any) (any, bool) {
	if len(c.buildStack) == 0 {
		return nil, false
	}
	top := c.buildStack[len(c.buildStack)-1]
	if impl, ok := c.contextual.find(top, abstract); ok {
		return impl, true
	}
	for _, alias := range c.aliases.abstractAliases[abstract] {
		if impl, ok := c.contextual.find(top, alias); ok {
			return impl, true
		}
	}
	return nil, false
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When(container.TypeOf[*PhotoController]()).
//	    Needs(container.TypeOf[Filesystem]()).
//	    Give(container.TypeOf[*S3Filesystem]())
type ContextualBuilder struct {
	container *Container
	concretes []any
	needs     any
	err       error
}

// When starts a contextual binding chain for one or more concrete types.
func (c *Container) When(concretes ...any) *ContextualBuilder {
	b := &ContextualBuilder{container: c}
	for _, concrete := range concretes {
		key, err := c.aliases.get(concrete)
		if err != nil {
			b.err = err
			break
		}
		b.concretes = append(b.concretes, key)
	}
	return b
}

// Needs specifies which abstract the concrete types depend on.
func (b *ContextualBuilder) Needs(abstract any) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give registers the implementation used when the concrete types resolve the
// needed abstract: a factory, an identifier resolved in its place, or (for a
// primitive) the literal value. Use GiveValue for instances.
func (b *ContextualBuilder) Give(implementation any) error {
	if b.err != nil {
		return b.err
	}
	if b.needs == nil {
		return &BindingError{Abstract: fmt.Sprint(names(b.concretes)), Reason: "contextual binding without Needs"}
	}
	for _, concrete := range b.concretes {
		if err := b.container.AddContextualBinding(concrete, b.needs, implementation); err != nil {
			return err
		}
	}
	return nil
}

// GiveValue gives a pre-built value.
//
//	// Laravel: ->give('/tmp/photos')
//	c.When(photos).Needs("$storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) error {
	return b.Give(valueFactory(value))
}

// GiveTagged gives every abstract tagged with tag, resolved when needed.
func (b *ContextualBuilder) GiveTagged(tag string) error {
	return b.Give(Factory(func(c *Container, _ Params) (any, error) {
		return c.Tagged(tag).Collect()
	}))
}

// GiveConfig gives the value of key from the repository bound as "config".
func (b *ContextualBuilder) GiveConfig(key string, def any) error {
	return b.Give(Factory(func(c *Container, _ Params) (any, error) {
		v, err := c.Make("config")
		if err != nil {
			return nil, err
		}
		repo, ok := v.(ConfigRepository)
		if !ok {
			return nil, &TypeMismatchError{Abstract: "config", Expected: "container.ConfigRepository", Actual: fmt.Sprintf("%T", v)}
		}
		return repo.Get(key, def), nil
	}))
}
