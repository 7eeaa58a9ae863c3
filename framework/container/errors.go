package container

import (
	"fmt"
	"strings"
)

// NotInstantiableError is returned when an identifier has no usable concrete:
// an unbound name or token, an interface without an implementation, or a
// type the reflector cannot construct.
type NotInstantiableError struct {
	Concrete   string
	BuildStack []string
}

func (e *NotInstantiableError) Error() string {
	if len(e.BuildStack) == 0 {
		return fmt.Sprintf("container: target [%s] is not instantiable", e.Concrete)
	}
	return fmt.Sprintf("container: target [%s] is not instantiable while building [%s]",
		e.Concrete, strings.Join(e.BuildStack, ", "))
}

// UnresolvableDependencyError is returned when a builtin parameter has no
// override, no contextual value and no default.
type UnresolvableDependencyError struct {
	Parameter string
	Class     string
}

func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("container: unresolvable dependency resolving [%s] in class %s", e.Parameter, e.Class)
}

// SelfAliasError is returned when an identifier is aliased to itself.
type SelfAliasError struct {
	Abstract string
}

func (e *SelfAliasError) Error() string {
	return fmt.Sprintf("container: [%s] is aliased to itself", e.Abstract)
}

// BindingError is returned when a binding cannot be registered.
type BindingError struct {
	Abstract string
	Reason   string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("container: cannot bind [%s]: %s", e.Abstract, e.Reason)
}

// EntryNotFoundError is returned by Get for an identifier that is not bound
// and could not be resolved.
type EntryNotFoundError struct {
	ID    string
	Cause error
}

func (e *EntryNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("container: no entry found for [%s]", e.ID)
	}
	return fmt.Sprintf("container: no entry found for [%s]: %v", e.ID, e.Cause)
}

func (e *EntryNotFoundError) Unwrap() error { return e.Cause }

// MissingMethodError is returned by Call when no method name was given, or the
// named method does not exist on the target.
type MissingMethodError struct {
	Target string
	Method string
}

func (e *MissingMethodError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("container: method not provided for [%s]", e.Target)
	}
	return fmt.Sprintf("container: method [%s] does not exist on [%s]", e.Method, e.Target)
}

// CyclicDependencyError is returned when resolution re-enters a type that is
// already being built, an alias chain loops, or the resolution depth limit is hit.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "container: circular dependency detected"
	}
	return "container: circular dependency detected: " + strings.Join(e.Path, " -> ")
}

// TypeMismatchError is returned by the generic helpers when the resolved
// instance is not a T.
type TypeMismatchError struct {
	Abstract string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s, expected %s", e.Abstract, e.Actual, e.Expected)
}

// DescriptorError is returned by the type registry when a constructor or method
// cannot be described.
type DescriptorError struct {
	Target string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("container: cannot describe %s: %s", e.Target, e.Reason)
}
