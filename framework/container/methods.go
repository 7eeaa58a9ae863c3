package container

import "reflect"

// MethodHandler replaces the injected invocation of a bound method.
type MethodHandler func(instance any, c *Container) (any, error)

// methodBinder maps "TypeName@method" keys to custom handlers.
type methodBinder struct {
	handlers map[string]MethodHandler
}

func newMethodBinder() *methodBinder {
	return &methodBinder{handlers: make(map[string]MethodHandler)}
}

// MethodKey returns the "TypeName@method" key for target. Identifiers use
// their name, instances the string form of their dynamic type.
func MethodKey(target any, method string) string {
	switch t := target.(type) {
	case string, *Token, reflect.Type:
		return Name(t) + "@" + method
	case nil:
		return "<nil>@" + method
	}
	return reflect.TypeOf(target).String() + "@" + method
}

// BindMethod overrides how Call invokes method on target.
//
//	// Laravel: $app->bindMethod([Job::class, 'handle'], fn($job, $app) => $job->handle($app['mailer']))
//	c.BindMethod(container.TypeOf[*Job](), "Handle", func(job any, c *container.Container) (any, error) {
//	    return nil, job.(*Job).Handle(container.MustResolve[Mailer](c, "mailer"))
//	})
func (c *Container) BindMethod(target any, method string, handler MethodHandler) {
	c.methods.handlers[MethodKey(target, method)] = handler
}

// HasMethodBinding reports whether a handler is bound for key.
func (c *Container) HasMethodBinding(key string) bool {
	_, ok := c.methods.handlers[key]
	return ok
}

// CallMethodBinding runs the handler bound for key.
func (c *Container) CallMethodBinding(key string, instance any) (any, error) {
	h, ok := c.methods.handlers[key]
	if !ok {
		return nil, &MissingMethodError{Target: key}
	}
	return h(instance, c)
}
