package container

import (
	"fmt"
	"reflect"
)

// ── Descriptors ───────────────────────────────────────────────────────────────

// Parameter describes one declared parameter of a constructor or callable.
type Parameter struct {
	Name       string
	Type       reflect.Type // declared type; a slice type for variadic parameters
	Builtin    bool         // true for primitives and other non-class types
	Position   int
	Default    any
	HasDefault bool
	Variadic   bool
}

// ClassType returns the type the container resolves for a class-typed
// parameter: the element type for variadic parameters, the declared type otherwise.
func (p Parameter) ClassType() reflect.Type {
	if p.Variadic {
		return p.Type.Elem()
	}
	return p.Type
}

// Constructor describes how to construct a type.
type Constructor struct {
	Type   reflect.Type
	Params []Parameter
	fn     reflect.Value // invalid for bare construction
}

// New invokes the constructor with already resolved arguments.
func (k *Constructor) New(args []reflect.Value) (any, error) {
	if !k.fn.IsValid() {
		if k.Type.Kind() == reflect.Pointer {
			return reflect.New(k.Type.Elem()).Interface(), nil
		}
		return reflect.New(k.Type).Elem().Interface(), nil
	}
	var out []reflect.Value
	if k.fn.Type().IsVariadic() {
		out = k.fn.CallSlice(args)
	} else {
		out = k.fn.Call(args)
	}
	return unpackResults(out)
}

// Reflector recovers constructor and callable metadata. It replaces runtime
// parameter-name introspection with explicit registration.
type Reflector interface {
	// Constructor returns the constructor for t, or false if t is not instantiable.
	Constructor(t reflect.Type) (*Constructor, bool)

	// Parameters describes a callable. recv and method are set when fn is a
	// method value; both are zero for plain functions.
	Parameters(fn reflect.Value, recv reflect.Type, method string) ([]Parameter, error)

	// Satisfies reports whether instance is an instance of abstract beyond
	// exact identifier equality.
	Satisfies(instance any, abstract any) bool
}

// ── Registration ──────────────────────────────────────────────────────────────

// ArgSpec names a parameter positionally and optionally gives it a default.
type ArgSpec struct {
	name       string
	def        any
	hasDefault bool
}

// Arg names the parameter at the matching position.
//
//	c.Define(NewMailer, container.Arg("host"), container.Arg("port").Default(25))
func Arg(name string) ArgSpec {
	return ArgSpec{name: name}
}

// Default sets the value used when nothing else resolves the parameter.
func (a ArgSpec) Default(v any) ArgSpec {
	a.def = v
	a.hasDefault = true
	return a
}

type methodKey struct {
	recv reflect.Type
	name string
}

// TypeRegistry is the default Reflector. Constructors are registered with
// Define; methods and functions used with Call can be named with DefineMethod
// and DefineFunc. Struct and pointer-to-struct types without a constructor are
// built bare.
type TypeRegistry struct {
	constructors map[reflect.Type]*Constructor
	methods      map[methodKey][]ArgSpec
	funcs        map[uintptr][]ArgSpec
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		constructors: make(map[reflect.Type]*Constructor),
		methods:      make(map[methodKey][]ArgSpec),
		funcs:        make(map[uintptr][]ArgSpec),
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Define registers ctor as the constructor of its first result type. ctor must
// return T or (T, error). When args are given there must be one per parameter.
func (r *TypeRegistry) Define(ctor any, args ...ArgSpec) error {
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func {
		return &DescriptorError{Target: fmt.Sprintf("%T", ctor), Reason: "constructor must be a function"}
	}
	ft := fn.Type()
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType && ft.Out(0) != errorType:
	default:
		return &DescriptorError{Target: ft.String(), Reason: "constructor must return T or (T, error)"}
	}

	params, err := describe(ft, 0, args, ft.String())
	if err != nil {
		return err
	}
	out := ft.Out(0)
	r.constructors[out] = &Constructor{Type: out, Params: params, fn: fn}
	return nil
}

// DefineMethod names the parameters of a method used with Call. target is an
// instance or a reflect.Type of the receiver.
func (r *TypeRegistry) DefineMethod(target any, method string, args ...ArgSpec) error {
	recv, ok := target.(reflect.Type)
	if !ok {
		recv = reflect.TypeOf(target)
	}
	if recv == nil {
		return &DescriptorError{Target: "<nil>", Reason: "method receiver is nil"}
	}
	m, ok := recv.MethodByName(method)
	if !ok {
		return &DescriptorError{Target: recv.String(), Reason: fmt.Sprintf("no method %s", method)}
	}
	offset := 1
	if recv.Kind() == reflect.Interface {
		offset = 0
	}
	if _, err := describe(m.Type, offset, args, recv.String()+"@"+method); err != nil {
		return err
	}
	r.methods[methodKey{recv: recv, name: method}] = args
	return nil
}

// DefineFunc names the parameters of a plain function used with Call. Closures
// created from the same literal share their names.
func (r *TypeRegistry) DefineFunc(fn any, args ...ArgSpec) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return &DescriptorError{Target: fmt.Sprintf("%T", fn), Reason: "not a function"}
	}
	if _, err := describe(v.Type(), 0, args, v.Type().String()); err != nil {
		return err
	}
	r.funcs[v.Pointer()] = args
	return nil
}

// Constructor implements Reflector.
func (r *TypeRegistry) Constructor(t reflect.Type) (*Constructor, bool) {
	if k, ok := r.constructors[t]; ok {
		return k, true
	}
	switch {
	case t.Kind() == reflect.Struct:
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
	default:
		return nil, false
	}
	return &Constructor{Type: t}, true
}

// Parameters implements Reflector.
func (r *TypeRegistry) Parameters(fn reflect.Value, recv reflect.Type, method string) ([]Parameter, error) {
	var args []ArgSpec
	target := fn.Type().String()
	if recv != nil {
		args = r.methods[methodKey{recv: recv, name: method}]
		target = recv.String() + "@" + method
	} else {
		args = r.funcs[fn.Pointer()]
	}
	return describe(fn.Type(), 0, args, target)
}

// Satisfies implements Reflector.
func (r *TypeRegistry) Satisfies(instance any, abstract any) bool {
	t, ok := abstract.(reflect.Type)
	if !ok || instance == nil {
		return false
	}
	it := reflect.TypeOf(instance)
	if t.Kind() == reflect.Interface {
		return it.Implements(t)
	}
	return it.AssignableTo(t)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func describe(ft reflect.Type, offset int, args []ArgSpec, target string) ([]Parameter, error) {
	n := ft.NumIn() - offset
	if len(args) != 0 && len(args) != n {
		return nil, &DescriptorError{
			Target: target,
			Reason: fmt.Sprintf("declares %d parameters but %d were named", n, len(args)),
		}
	}
	params := make([]Parameter, n)
	for i := 0; i < n; i++ {
		pt := ft.In(i + offset)
		p := Parameter{
			Type:     pt,
			Position: i,
			Variadic: ft.IsVariadic() && i+offset == ft.NumIn()-1,
		}
		p.Builtin = isBuiltin(p.ClassType())
		if len(args) != 0 {
			a := args[i]
			p.Name = a.name
			if a.hasDefault {
				if a.def != nil && !convertible(reflect.TypeOf(a.def), pt) {
					return nil, &DescriptorError{
						Target: target,
						Reason: fmt.Sprintf("default for %q is %T, parameter is %s", a.name, a.def, pt),
					}
				}
				p.Default = a.def
				p.HasDefault = true
			}
		}
		params[i] = p
	}
	return params, nil
}

func isBuiltin(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct:
		return false
	case reflect.Pointer:
		return t.Elem().Kind() != reflect.Struct
	}
	return true
}

// argValue converts a resolved value to the declared parameter type.
func argValue(name string, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if convertible(rv.Type(), t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, &TypeMismatchError{Abstract: name, Expected: t.String(), Actual: rv.Type().String()}
}

// convertible allows named-type and numeric conversions but not the
// int-to-string style conversions reflect would otherwise accept.
func convertible(from, to reflect.Type) bool {
	if from.AssignableTo(to) {
		return true
	}
	if !from.ConvertibleTo(to) {
		return false
	}
	return from.Kind() == to.Kind() || (isNumeric(from) && isNumeric(to))
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unpackResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
