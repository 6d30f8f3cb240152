// Package meta implements the runtime type model the proxy engine works on.
//
// Go cannot define new types with methods at runtime, so proxykit carries its
// own small object model: a Type is a class or a contract, a Method carries
// visibility, modifier flags and an optional body, and an Object dispatches
// calls virtually through its Type. Method bodies are plain typed Go
// functions whose first parameter is the receiver:
//
//	func(self meta.Object, s string) (string, error)
//	func(self meta.Object, n int32) error // no result
//
// The package provides:
//   - Type and Method metadata (visibility, static/final/abstract/bridge)
//   - Class and contract builders with validation
//   - Instances with identity, fields and constructor chains
//   - Boxing between typed reflect values and the generic `any` form
package meta

import "strings"

// Visibility is the access level of a method or constructor.
type Visibility uint8

const (
	Private Visibility = iota
	Package
	Protected
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Package:
		return "package"
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// Flags are method and type modifiers.
type Flags uint16

const (
	Static Flags = 1 << iota
	Final
	Abstract
	Bridge
	Synthetic
)

// Has reports whether all bits of x are set.
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var parts []string
	names := []struct {
		flag Flags
		name string
	}{
		{Static, "static"},
		{Final, "final"},
		{Abstract, "abstract"},
		{Bridge, "bridge"},
		{Synthetic, "synthetic"},
	}
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// Kind distinguishes classes from contracts.
type Kind uint8

const (
	ClassKind Kind = iota
	ContractKind
)

func (k Kind) String() string {
	if k == ContractKind {
		return "contract"
	}
	return "class"
}
