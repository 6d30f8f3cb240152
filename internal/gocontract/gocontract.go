// Package gocontract turns Go interfaces into contracts.
//
// Each exported, non-generic interface type of the loaded packages becomes
// a contract named "<package>.<Interface>" with one abstract method per
// interface method, embedded interfaces included. Go types map to
// reflect types where the loader knows the type at run time:
//
//   - basic types, and slices and maps of them
//   - context.Context, error, time.Time and time.Duration
//
// Every other type maps to any. A trailing error result is dropped: the
// invocation path carries errors separately. Two or more remaining results
// are returned as []any.
package gocontract

import (
	"context"
	"fmt"
	"go/types"
	"os"
	"reflect"
	"strings"
	"time"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Contract is a contract built from a Go interface.
type Contract struct {
	// PkgPath is the import path of the declaring package.
	PkgPath string

	// Name is the interface name.
	Name string

	// Type is the contract.
	Type *meta.Type

	// Lossy lists the methods with at least one parameter or result
	// mapped to any.
	Lossy []string
}

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	anySlice     = reflect.TypeOf([]any(nil))
)

// Load loads the packages matching patterns, resolved in dir, and returns
// a contract per exported interface, in package then declaration-name order.
func Load(ctx context.Context, dir string, patterns ...string) ([]*Contract, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedImports |
			packages.NeedDeps,
		Context: ctx,
		Dir:     dir,
		Env:     append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	var out []*Contract
	for _, pkg := range pkgs {
		cs, err := FromPackage(pkg.Types)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	return out, nil
}

// FromPackage builds the contracts of a type-checked package.
func FromPackage(pkg *types.Package) ([]*Contract, error) {
	var out []*Contract
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		iface, ok := named.Underlying().(*types.Interface)
		if !ok || iface.NumMethods() == 0 {
			continue
		}
		c, err := fromInterface(pkg, name, iface)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func fromInterface(pkg *types.Package, name string, iface *types.Interface) (*Contract, error) {
	c := &Contract{PkgPath: pkg.Path(), Name: name}
	b := meta.NewContract(pkg.Name() + "." + name)
	for i := 0; i < iface.NumMethods(); i++ {
		fn := iface.Method(i)
		sig := fn.Type().(*types.Signature)
		result, params, exact := extractSignature(sig)
		if !exact {
			c.Lossy = append(c.Lossy, fn.Name())
		}
		b.Declare(fn.Name(), result, params...)
	}
	t, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("interface %s.%s: %w", pkg.Path(), name, err)
	}
	c.Type = t
	return c, nil
}

// extractSignature maps a method signature. exact is false when a type
// was widened to any.
func extractSignature(sig *types.Signature) (result reflect.Type, params []reflect.Type, exact bool) {
	exact = true
	ps := sig.Params()
	for i := 0; i < ps.Len(); i++ {
		pt := ps.At(i).Type()
		rt, ok := typeToReflect(pt)
		exact = exact && ok
		params = append(params, rt)
	}

	rs := sig.Results()
	n := rs.Len()
	if n > 0 && isErrorType(rs.At(n-1).Type()) {
		n--
	}
	switch n {
	case 0:
	case 1:
		rt, ok := typeToReflect(rs.At(0).Type())
		exact = exact && ok
		result = rt
	default:
		result = anySlice
	}
	return result, params, exact
}

// typeToReflect maps a Go type to its run-time type. ok is false when the
// type is not known at run time and any is used instead.
func typeToReflect(t types.Type) (reflect.Type, bool) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		if rt := basicTypeToReflect(t.Kind()); rt != nil {
			return rt, true
		}
	case *types.Slice:
		if elem, ok := typeToReflect(t.Elem()); ok {
			return reflect.SliceOf(elem), true
		}
	case *types.Map:
		key, kok := typeToReflect(t.Key())
		elem, eok := typeToReflect(t.Elem())
		if kok && eok && key.Comparable() {
			return reflect.MapOf(key, elem), true
		}
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			if obj.Name() == "error" {
				return errorType, true
			}
			break
		}
		switch obj.Pkg().Path() + "." + obj.Name() {
		case "context.Context":
			return contextType, true
		case "time.Time":
			return timeType, true
		case "time.Duration":
			return durationType, true
		}
	case *types.Interface:
		if t.Empty() {
			return meta.AnyType(), true
		}
	}
	return meta.AnyType(), false
}

// basicTypeToReflect maps a types.BasicKind to its reflect type, or nil.
func basicTypeToReflect(kind types.BasicKind) reflect.Type {
	switch kind {
	case types.Bool:
		return reflect.TypeOf(false)
	case types.Int:
		return reflect.TypeOf(int(0))
	case types.Int8:
		return reflect.TypeOf(int8(0))
	case types.Int16:
		return reflect.TypeOf(int16(0))
	case types.Int32:
		return reflect.TypeOf(int32(0))
	case types.Int64:
		return reflect.TypeOf(int64(0))
	case types.Uint:
		return reflect.TypeOf(uint(0))
	case types.Uint8:
		return reflect.TypeOf(uint8(0))
	case types.Uint16:
		return reflect.TypeOf(uint16(0))
	case types.Uint32:
		return reflect.TypeOf(uint32(0))
	case types.Uint64:
		return reflect.TypeOf(uint64(0))
	case types.Uintptr:
		return reflect.TypeOf(uintptr(0))
	case types.Float32:
		return reflect.TypeOf(float32(0))
	case types.Float64:
		return reflect.TypeOf(float64(0))
	case types.Complex64:
		return reflect.TypeOf(complex64(0))
	case types.Complex128:
		return reflect.TypeOf(complex128(0))
	case types.String:
		return reflect.TypeOf("")
	}
	return nil
}

// isErrorType checks if a type is the error interface.
func isErrorType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if ok {
		t = named.Underlying()
	}
	iface, ok := t.(*types.Interface)
	if !ok {
		return false
	}
	return iface.NumMethods() == 1 && iface.Method(0).Name() == "Error"
}
