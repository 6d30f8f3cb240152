package meta

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Object is a value of the type model. Invoke dispatches by exact
// signature through the virtual table; Call resolves by name and
// arguments first.
type Object interface {
	Type() *Type
	ID() uuid.UUID
	Invoke(sig Signature, args ...any) (any, error)
	Call(name string, args ...any) (any, error)
}

// Instance is the standard Object: an instance of a class with its own
// identity, a field map and an optional attachment owned by whoever created
// it.
type Instance struct {
	typ        *Type
	id         uuid.UUID
	attachment any

	mu     sync.RWMutex
	fields map[string]any
}

// New instantiates t, running the constructor matching args after the
// no-argument constructors of every superclass, outermost first.
func New(t *Type, args ...any) (*Instance, error) {
	return NewAttached(t, nil, args...)
}

// NewAttached is New with an attachment that is already visible to the
// constructors.
func NewAttached(t *Type, attachment any, args ...any) (*Instance, error) {
	if t.IsAbstract() {
		return nil, fmt.Errorf("%s: %w", t, ErrAbstractType)
	}
	c, err := t.constructorFor(args)
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		typ:        t,
		id:         uuid.New(),
		attachment: attachment,
		fields:     make(map[string]any),
	}
	if err := inst.construct(t, c, args); err != nil {
		return nil, err
	}
	return inst, nil
}

func (i *Instance) construct(t *Type, c *Constructor, args []any) error {
	if s := t.super; s != nil {
		sc := s.DefaultConstructor()
		if sc == nil {
			return fmt.Errorf("%s: %w", s.name, ErrNoDefaultConstructor)
		}
		if err := i.construct(s, sc, nil); err != nil {
			return err
		}
	}
	return c.run(i, args)
}

func (i *Instance) Type() *Type     { return i.typ }
func (i *Instance) ID() uuid.UUID   { return i.id }
func (i *Instance) Attachment() any { return i.attachment }

// Invoke calls the method resolved for sig by the instance's type.
// Private methods are not in the table; see Type.Declared.
func (i *Instance) Invoke(sig Signature, args ...any) (any, error) {
	m := i.typ.vtable[sig]
	if m == nil {
		return nil, &NoSuchMethodError{Type: i.typ, Method: sig.String()}
	}
	return m.CallBody(i, args)
}

// Call resolves name against args and invokes the result virtually.
func (i *Instance) Call(name string, args ...any) (any, error) {
	m, err := i.typ.Lookup(name, args...)
	if err != nil {
		return nil, err
	}
	return m.CallBody(i, args)
}

// Get returns a field value.
func (i *Instance) Get(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

// Set stores a field value.
func (i *Instance) Set(name string, v any) {
	i.mu.Lock()
	i.fields[name] = v
	i.mu.Unlock()
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s@%s", i.typ.name, i.id.String()[:8])
}
