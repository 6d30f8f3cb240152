package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrAbstractType is returned when instantiating a contract or an
	// abstract class.
	ErrAbstractType = errors.New("cannot instantiate abstract type")

	// ErrNoDefaultConstructor is returned when a superclass in a
	// constructor chain has no no-argument constructor.
	ErrNoDefaultConstructor = errors.New("no no-argument constructor")
)

// AbstractMethodError reports a call to a method without a body.
type AbstractMethodError struct {
	Method *Method
}

func (e *AbstractMethodError) Error() string {
	return fmt.Sprintf("abstract method called: %s", e.Method)
}

// NoSuchMethodError reports a failed method resolution.
type NoSuchMethodError struct {
	Type   *Type
	Method string
}

func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("no method %s on %s", e.Method, e.Type.Name())
}

// AmbiguousCallError reports a by-name call matching several overloads.
type AmbiguousCallError struct {
	Type    *Type
	Name    string
	Matches []*Method
}

func (e *AmbiguousCallError) Error() string {
	sigs := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		sigs[i] = m.String()
	}
	return fmt.Sprintf("ambiguous call to %s on %s: %s", e.Name, e.Type.Name(), strings.Join(sigs, ", "))
}

// ArgumentError reports an argument that cannot be passed to a method.
type ArgumentError struct {
	Method string
	Index  int
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %d: %v", e.Method, e.Index, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ConversionError reports a value whose dynamic type is not assignable to
// the declared type. From is nil for a nil value.
type ConversionError struct {
	From reflect.Type
	To   reflect.Type
}

func (e *ConversionError) Error() string {
	if e.From == nil {
		return fmt.Sprintf("cannot use nil as %s", e.To)
	}
	return fmt.Sprintf("cannot use %s as %s", e.From, e.To)
}

// BuildError reports an invalid type definition.
type BuildError struct {
	Type   string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("type %s: %s", e.Type, e.Reason)
}

func buildErrorf(typ, format string, args ...any) *BuildError {
	return &BuildError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}
