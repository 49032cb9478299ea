package typeresolve

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// ExternalResolver answers the priority-5 fallback of §4.7 for a callee this
// process never parsed itself: a function imported from a package outside
// the indexed repository (standard library or a third-party module). Rather
// than widen straight to Unknown, Type Resolver loads the callee's compiled
// export data via golang.org/x/tools/go/packages and maps its declared
// return type into an Expr, the same term representation a local-function
// summary produces.
//
// This only applies to Go; other languages have no equivalent compiled
// export-data source and fall back to Unknown exactly as before.
type ExternalResolver struct {
	loaded map[string]*packages.Package
	load   func(pkgPath string) (*packages.Package, error)
}

// NewExternalResolver builds a resolver rooted at dir (a Go module's root,
// so `go list`-driven package loading resolves against the right go.mod).
func NewExternalResolver(dir string) *ExternalResolver {
	r := &ExternalResolver{loaded: map[string]*packages.Package{}}
	r.load = func(pkgPath string) (*packages.Package, error) {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
			Dir:  dir,
		}
		pkgs, err := packages.Load(cfg, pkgPath)
		if err != nil {
			return nil, fmt.Errorf("typeresolve: load package %q: %w", pkgPath, err)
		}
		if len(pkgs) == 0 {
			return nil, fmt.Errorf("typeresolve: package %q not found", pkgPath)
		}
		if len(pkgs[0].Errors) > 0 {
			return nil, fmt.Errorf("typeresolve: package %q: %v", pkgPath, pkgs[0].Errors[0])
		}
		return pkgs[0], nil
	}
	return r
}

// newExternalResolverWithLoader builds a resolver around a caller-supplied
// loader, bypassing the real packages.Load round-trip — used by tests to
// exercise ResolveFunctionType's caching and lookup logic against an
// in-memory *packages.Package.
func newExternalResolverWithLoader(load func(pkgPath string) (*packages.Package, error)) *ExternalResolver {
	return &ExternalResolver{loaded: map[string]*packages.Package{}, load: load}
}

// ResolveFunctionType returns the Expr for funcName's return type within
// pkgPath, caching the loaded package across calls since a single build
// typically asks about several functions from the same external package.
func (r *ExternalResolver) ResolveFunctionType(pkgPath, funcName string) (Expr, error) {
	pkg, ok := r.loaded[pkgPath]
	if !ok {
		loaded, err := r.load(pkgPath)
		if err != nil {
			return Unknown, err
		}
		pkg = loaded
		r.loaded[pkgPath] = pkg
	}

	return resolveFromPackage(pkg, pkgPath, funcName)
}

func resolveFromPackage(pkg *packages.Package, pkgPath, funcName string) (Expr, error) {
	obj := pkg.Types.Scope().Lookup(funcName)
	if obj == nil {
		return Unknown, fmt.Errorf("typeresolve: %s.%s not found", pkgPath, funcName)
	}
	sig, ok := obj.Type().(*types.Signature)
	if !ok {
		return Unknown, fmt.Errorf("typeresolve: %s.%s is not a function", pkgPath, funcName)
	}
	return signatureReturnExpr(sig), nil
}

// signatureReturnExpr converts a go/types function signature's results into
// the same Expr shape a local body-return-type summary would produce: no
// results is "unit", one result is its type, multiple results join into a
// Union (so callers see "could be any of these" exactly like a multi-branch
// local return).
func signatureReturnExpr(sig *types.Signature) Expr {
	results := sig.Results()
	if results == nil || results.Len() == 0 {
		return Con("unit")
	}
	exprs := make([]Expr, results.Len())
	for i := 0; i < results.Len(); i++ {
		exprs[i] = goTypeToExpr(results.At(i).Type())
	}
	joined := exprs[0]
	for _, e := range exprs[1:] {
		joined = Union(joined, e)
	}
	return joined
}

// goTypeToExpr maps a go/types.Type onto the Expr term language. Only the
// shapes needed to describe a return type are handled; anything structurally
// richer (generics, interfaces beyond error) widens to Unknown rather than
// risk an incorrect precise type.
func goTypeToExpr(t types.Type) Expr {
	// A defined (named) type keeps its own name even when its underlying
	// shape is a basic/struct/etc. — "MyInt" should stay "MyInt", not widen
	// to "int".
	if named, ok := t.(*types.Named); ok {
		return Con(named.Obj().Name())
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return Con(u.Name())
	case *types.Slice:
		return Con("List", goTypeToExpr(u.Elem()))
	case *types.Array:
		return Con("List", goTypeToExpr(u.Elem()))
	case *types.Map:
		return Con("Map", goTypeToExpr(u.Key()), goTypeToExpr(u.Elem()))
	case *types.Pointer:
		return Con("Pointer", goTypeToExpr(u.Elem()))
	case *types.Interface:
		if u.Empty() {
			return Unknown
		}
		return Unknown
	default:
		return Unknown
	}
}
