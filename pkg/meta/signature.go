package meta

import (
	"reflect"
	"strings"
)

// Signature identifies a method by name and ordered parameter types.
// It is comparable and used as the key of virtual tables and dedup sets.
type Signature struct {
	Name   string
	Params string
}

// SignatureOf builds the signature for name and params.
func SignatureOf(name string, params ...reflect.Type) Signature {
	return Signature{Name: name, Params: typeListKey(params)}
}

func (s Signature) String() string {
	return s.Name + "(" + s.Params + ")"
}

func typeListKey(ts []reflect.Type) string {
	var b strings.Builder
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeKey(t))
	}
	return b.String()
}

// typeKey qualifies named types with their package path so two types that
// print the same from different packages never collide.
func typeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
