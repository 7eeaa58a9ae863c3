package container

import (
	"fmt"
	"reflect"
)

// Token is a unique opaque identifier. Two tokens are equal only if they are
// the same pointer, so tokens with the same name never collide.
//
//	var Mailer = container.NewToken("Mailer")
//	c.Singleton(Mailer, func(c *container.Container, _ container.Params) (any, error) { ... })
type Token struct {
	name string
}

// NewToken creates a new unique token.
func NewToken(name string) *Token {
	return &Token{name: name}
}

func (t *Token) String() string { return t.name }

// Params holds ad-hoc, name-keyed arguments for a single Make or Call.
type Params map[string]any

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// TypeOf returns the reflect.Type identifier for T. Interfaces work too:
//
//	c.Bind(container.TypeOf[Cache](), container.TypeOf[*RedisCache]())
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Name returns the display name of an identifier.
func Name(abstract any) string {
	switch v := abstract.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case reflect.Type:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// isIdentifier reports whether v can be used as a map key identifier.
func isIdentifier(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(reflect.Type); ok {
		return true
	}
	t := reflect.TypeOf(v)
	return t.Kind() != reflect.Func && t.Comparable()
}

func names(ids []any) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Name(id)
	}
	return out
}
