package container

import (
	"errors"
	"fmt"
	"reflect"
)

var anySliceType = reflect.TypeOf([]any(nil))

// build instantiates a concrete: factories are called with the active
// parameters, types are constructed with their dependencies injected.
func (c *Container) build(concrete any) (any, error) {
	if f, ok := concrete.(Factory); ok {
		return f(c, c.lastParameterOverride())
	}

	t, ok := concrete.(reflect.Type)
	if !ok {
		return nil, &NotInstantiableError{Concrete: Name(concrete), BuildStack: names(c.buildStack)}
	}
	ctor, ok := c.reflector.Constructor(t)
	if !ok {
		return nil, &NotInstantiableError{Concrete: t.String(), BuildStack: names(c.buildStack)}
	}
	for _, building := range c.buildStack {
		if building == t {
			return nil, &CyclicDependencyError{Path: names(append(append([]any(nil), c.buildStack...), t))}
		}
	}

	c.buildStack = append(c.buildStack, t)
	args, err := func() ([]reflect.Value, error) {
		defer func() { c.buildStack = c.buildStack[:len(c.buildStack)-1] }()
		return c.resolveDependencies(ctor.Params, t)
	}()
	if err != nil {
		return nil, err
	}
	return ctor.New(args)
}

func (c *Container) resolveDependencies(params []Parameter, class reflect.Type) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(params))
	for _, p := range params {
		v, ok := c.parameterOverride(p)
		if !ok {
			var err error
			if p.Builtin {
				v, err = c.resolvePrimitive(p, class.String())
			} else {
				v, err = c.resolveClass(p)
			}
			if err != nil {
				return nil, err
			}
		}
		arg, err := argumentFor(p, v)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// lastParameterOverride returns the parameters of the innermost resolve.
func (c *Container) lastParameterOverride() Params {
	if len(c.with) == 0 {
		return Params{}
	}
	return c.with[len(c.with)-1]
}

func (c *Container) parameterOverride(p Parameter) (any, bool) {
	if p.Name == "" {
		return nil, false
	}
	with := c.lastParameterOverride()
	v, ok := with[p.Name]
	if ok {
		// consumed: a later parameter with the same name must resolve normally
		delete(with, p.Name)
	}
	return v, ok
}

// resolvePrimitive resolves a builtin parameter from a contextual "$name"
// binding, then the declared default.
func (c *Container) resolvePrimitive(p Parameter, class string) (any, error) {
	if p.Name != "" {
		if impl, ok := c.contextualConcrete("$" + p.Name); ok {
			if f, ok := impl.(Factory); ok {
				return f(c, c.lastParameterOverride())
			}
			return impl, nil
		}
	}
	if p.HasDefault {
		return p.Default, nil
	}
	if p.Variadic {
		return []any{}, nil
	}
	return nil, &UnresolvableDependencyError{Parameter: label(p), Class: class}
}

// resolveClass resolves a class-typed parameter through Make. Only a
// NotInstantiableError falls back, to the default or an empty variadic list.
func (c *Container) resolveClass(p Parameter) (any, error) {
	var (
		v   any
		err error
	)
	if p.Variadic {
		v, err = c.resolveVariadicClass(p)
	} else {
		v, err = c.Make(p.ClassType())
	}
	if err == nil {
		return v, nil
	}

	var notInstantiable *NotInstantiableError
	if errors.As(err, &notInstantiable) {
		if p.HasDefault {
			return p.Default, nil
		}
		if p.Variadic {
			return []any{}, nil
		}
	}
	return nil, err
}

func (c *Container) resolveVariadicClass(p Parameter) (any, error) {
	impl, ok := c.contextualConcrete(c.key(p.ClassType()))
	list, isList := impl.([]any)
	if !ok || !isList {
		return c.Make(p.ClassType())
	}
	out := make([]any, 0, len(list))
	for _, abstract := range list {
		v, err := c.Make(abstract)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// argumentFor converts a resolved value into the argument for p. A []any is
// spread into slice and variadic parameters; a single value given to a
// variadic parameter becomes a one-element slice.
func argumentFor(p Parameter, v any) (reflect.Value, error) {
	if list, ok := v.([]any); ok && p.Type.Kind() == reflect.Slice && p.Type != anySliceType {
		out := reflect.MakeSlice(p.Type, len(list), len(list))
		for i, item := range list {
			iv, err := argValue(label(p), item, p.Type.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(iv)
		}
		return out, nil
	}
	if p.Variadic && v != nil && !reflect.TypeOf(v).AssignableTo(p.Type) {
		iv, err := argValue(label(p), v, p.Type.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(p.Type, 1, 1)
		out.Index(0).Set(iv)
		return out, nil
	}
	return argValue(label(p), v, p.Type)
}

func label(p Parameter) string {
	if p.Name == "" {
		return fmt.Sprintf("#%d %s", p.Position, p.Type)
	}
	return fmt.Sprintf("#%d $%s", p.Position, p.Name)
}
