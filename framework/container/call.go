package container

import (
	"fmt"
	"reflect"
	"strings"
)

// BoundMethod names a method on a target for Call. Target is an instance or an
// identifier resolved through Make.
type BoundMethod struct {
	Target any
	Name   string
}

// Method returns a BoundMethod callback.
//
//	// Laravel: $app->call([$controller, 'show'], ['id' => 1])
//	c.Call(container.Method(controller, "Show"), container.Params{"id": 1})
func Method(target any, name string) BoundMethod {
	return BoundMethod{Target: target, Name: name}
}

// Call invokes callback, injecting its parameters: by name from params, by
// declared type name from params, then from the container.
//
// callback is a function, a BoundMethod, an "identifier@Method" string, or a
// bare identifier that resolves to a function. defaultMethod is used for
// identifiers and instances given without a method.
//
//	// Laravel: $app->call('UserController@show', ['id' => 1])
//	c.Call("users@Show", container.Params{"id": 1})
func (c *Container) Call(callback any, params Params, defaultMethod ...string) (any, error) {
	method := ""
	if len(defaultMethod) > 0 {
		method = defaultMethod[0]
	}

	switch cb := callback.(type) {
	case nil:
		return nil, &MissingMethodError{Target: "<nil>"}
	case string:
		if strings.Contains(cb, "@") || method != "" {
			return c.callClass(cb, params, method)
		}
		v, err := c.Make(cb)
		if err != nil {
			return nil, err
		}
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			return c.callFunc(v, params)
		}
		return nil, &MissingMethodError{Target: cb}
	case BoundMethod:
		return c.callMethod(cb.Target, cb.Name, params)
	case *BoundMethod:
		return c.callMethod(cb.Target, cb.Name, params)
	}

	if reflect.TypeOf(callback).Kind() == reflect.Func {
		return c.callFunc(callback, params)
	}
	if method != "" {
		return c.callMethod(callback, method, params)
	}
	return nil, &MissingMethodError{Target: fmt.Sprintf("%T", callback)}
}

// Wrap returns a closure that calls callback with params.
func (c *Container) Wrap(callback any, params Params) func() (any, error) {
	return func() (any, error) { return c.Call(callback, params) }
}

func (c *Container) callClass(target string, params Params, defaultMethod string) (any, error) {
	id, method, found := strings.Cut(target, "@")
	if !found {
		method = defaultMethod
	}
	if method == "" {
		return nil, &MissingMethodError{Target: id}
	}
	return c.callMethod(id, method, params)
}

func (c *Container) callMethod(target any, method string, params Params) (any, error) {
	instance := target
	switch target.(type) {
	case string, *Token, reflect.Type:
		v, err := c.Make(target)
		if err != nil {
			return nil, err
		}
		instance = v
	}
	if instance == nil {
		return nil, &MissingMethodError{Target: Name(target), Method: method}
	}

	for _, key := range []string{MethodKey(target, method), MethodKey(instance, method)} {
		if c.HasMethodBinding(key) {
			return c.CallMethodBinding(key, instance)
		}
	}

	recv := reflect.TypeOf(instance)
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return nil, &MissingMethodError{Target: recv.String(), Method: method}
	}
	ps, err := c.reflector.Parameters(m, recv, method)
	if err != nil {
		return nil, err
	}
	return c.invoke(m, ps, params, recv.String())
}

func (c *Container) callFunc(fn any, params Params) (any, error) {
	v := reflect.ValueOf(fn)
	ps, err := c.reflector.Parameters(v, nil, "")
	if err != nil {
		return nil, err
	}
	return c.invoke(v, ps, params, v.Type().String())
}

func (c *Container) invoke(fn reflect.Value, ps []Parameter, params Params, class string) (any, error) {
	given := params.clone()
	args := make([]reflect.Value, 0, len(ps))
	for _, p := range ps {
		v, err := c.callArgument(p, given, class)
		if err != nil {
			return nil, err
		}
		arg, err := argumentFor(p, v)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	var out []reflect.Value
	if fn.Type().IsVariadic() {
		out = fn.CallSlice(args)
	} else {
		out = fn.Call(args)
	}
	return unpackResults(out)
}

// callArgument consumes a matching entry of given, or resolves p the way a
// constructor dependency is resolved.
func (c *Container) callArgument(p Parameter, given Params, class string) (any, error) {
	if p.Name != "" {
		if v, ok := given[p.Name]; ok {
			delete(given, p.Name)
			return v, nil
		}
	}
	if !p.Builtin {
		typeName := p.ClassType().String()
		if v, ok := given[typeName]; ok {
			delete(given, typeName)
			return v, nil
		}
		return c.resolveClass(p)
	}
	return c.resolvePrimitive(p, class)
}
