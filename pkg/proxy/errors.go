package proxy

import (
	"errors"
	"fmt"
)

var (
	ErrNilPolicy        = errors.New("nil policy")
	ErrInvalidBase      = errors.New("base must be a class")
	ErrFinalBase        = errors.New("base class is final")
	ErrInvalidContract  = errors.New("not a contract")
	ErrNoInitializer    = errors.New("base has no accessible no-argument constructor")
	ErrBaseNotSupported = errors.New("strategy cannot extend a base class")
)

// SynthesisError is returned by Make and NewInstance. Errors on the
// invocation path are never wrapped.
type SynthesisError struct {
	// Op is "make" or "new instance".
	Op string

	// Type is the base type name for make, the generated type name for new
	// instance.
	Type string

	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("proxy: %s %s: %v", e.Op, e.Type, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
