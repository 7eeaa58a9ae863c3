package container

import "go.uber.org/zap"

// instanceSharer caches shared instances.
type instanceSharer struct {
	// abstract → resolved shared instance
	instances map[any]any

	// abstracts registered with Scoped
	scoped []any
}

func newInstanceSharer() *instanceSharer {
	s := &instanceSharer{}
	s.reset()
	return s
}

func (s *instanceSharer) reset() {
	s.instances = make(map[any]any)
	s.scoped = nil
}

func (s *instanceSharer) get(abstract any) (any, bool) {
	v, ok := s.instances[abstract]
	return v, ok
}

func (s *instanceSharer) has(abstract any) bool {
	_, ok := s.instances[abstract]
	return ok
}

func (s *instanceSharer) set(abstract, instance any) { s.instances[abstract] = instance }

func (s *instanceSharer) forget(abstract any) { delete(s.instances, abstract) }

func (s *instanceSharer) markScoped(abstract any) { s.scoped = append(s.scoped, abstract) }

func (s *instanceSharer) forgetScoped() {
	for _, abstract := range s.scoped {
		delete(s.instances, abstract)
	}
}

// Instance registers a pre-built value as a shared instance. If the abstract
// was already bound, rebinding callbacks fire with the new value.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", cfg)
func (c *Container) Instance(abstract, instance any) error {
	if !isIdentifier(abstract) {
		return &BindingError{Abstract: Name(abstract), Reason: "identifier must be a comparable, non-func value"}
	}
	c.aliases.removeAbstractAlias(abstract)

	isBound := c.Bound(abstract)
	c.aliases.forget(abstract)
	c.shared.set(abstract, instance)
	c.logger.Debug("container: instance registered",
		zap.String("abstract", Name(abstract)), zap.Bool("replaced", isBound))

	if isBound {
		return c.rebound(abstract)
	}
	return nil
}

// HasSharedInstance reports whether a shared instance is cached for abstract.
func (c *Container) HasSharedInstance(abstract any) bool {
	return isIdentifier(abstract) && c.shared.has(abstract)
}

// ForgetInstance drops the cached instance of abstract.
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) ForgetInstance(abstract any) {
	if isIdentifier(abstract) {
		c.shared.forget(abstract)
	}
}

// ForgetInstances drops every cached instance except the container itself.
func (c *Container) ForgetInstances() {
	c.shared.instances = make(map[any]any)
	c.shared.set(TypeOf[*Container](), c)
}

// ForgetScopedInstances drops the cached instances of scoped bindings.
func (c *Container) ForgetScopedInstances() {
	c.shared.forgetScoped()
}
