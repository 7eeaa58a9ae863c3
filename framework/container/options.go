package container

import "go.uber.org/zap"

// DefaultMaxDepth bounds nested resolutions so that a cycle through factories
// fails with a CyclicDependencyError instead of exhausting the goroutine stack.
const DefaultMaxDepth = 1024

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for binding and resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReflector replaces the default TypeRegistry.
func WithReflector(r Reflector) Option {
	return func(c *Container) {
		if r != nil {
			c.reflector = r
		}
	}
}

// WithMaxDepth sets the maximum number of nested resolutions. Values <= 0 keep
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *Container) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}
