package container

// extenderChain holds post-construction decorators per canonical abstract.
type extenderChain struct {
	chains map[any][]Extender
}

func newExtenderChain() *extenderChain {
	return &extenderChain{chains: make(map[any][]Extender)}
}

func (e *extenderChain) add(abstract any, fn Extender) {
	e.chains[abstract] = append(e.chains[abstract], fn)
}

func (e *extenderChain) apply(abstract, instance any, c *Container) any {
	for _, fn := range e.chains[abstract] {
		instance = fn(instance, c)
	}
	return instance
}

func (e *extenderChain) forget(abstract any) { delete(e.chains, abstract) }

// Extend decorates the resolved instance of an abstract. Extenders run in
// registration order on every build. A cached shared instance is decorated in
// place instead, and rebinding callbacks fire.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
func (c *Container) Extend(abstract any, fn Extender) error {
	abstract, err := c.aliases.get(abstract)
	if err != nil {
		return err
	}
	if instance, ok := c.shared.get(abstract); ok {
		c.shared.set(abstract, fn(instance, c))
		return c.rebound(abstract)
	}
	c.extenders.add(abstract, fn)
	if c.Resolved(abstract) {
		return c.rebound(abstract)
	}
	return nil
}

// ForgetExtenders removes the extenders of an abstract.
func (c *Container) ForgetExtenders(abstract any) {
	if isIdentifier(abstract) {
		c.extenders.forget(c.key(abstract))
	}
}
