package typeresolve

import (
	"errors"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/tools/go/packages"
)

func fakeFuncPackage(t *testing.T, pkgPath string, funcs map[string]*types.Signature) *packages.Package {
	t.Helper()
	tpkg := types.NewPackage(pkgPath, "pkgname")
	scope := tpkg.Scope()
	for name, sig := range funcs {
		fn := types.NewFunc(token.NoPos, tpkg, name, sig)
		scope.Insert(fn)
	}
	return &packages.Package{PkgPath: pkgPath, Types: tpkg}
}

func sigReturning(results ...types.Type) *types.Signature {
	vars := make([]*types.Var, len(results))
	for i, r := range results {
		vars[i] = types.NewVar(token.NoPos, nil, "", r)
	}
	return types.NewSignature(nil, nil, types.NewTuple(vars...), false)
}

func TestGoTypeToExprMapsBasicKinds(t *testing.T) {
	assert.Equal(t, Con("int"), goTypeToExpr(types.Typ[types.Int]))
	assert.Equal(t, Con("string"), goTypeToExpr(types.Typ[types.String]))
	assert.Equal(t, Con("bool"), goTypeToExpr(types.Typ[types.Bool]))
}

func TestGoTypeToExprMapsSliceAndMap(t *testing.T) {
	sl := types.NewSlice(types.Typ[types.String])
	assert.Equal(t, Con("List", Con("string")), goTypeToExpr(sl))

	m := types.NewMap(types.Typ[types.String], types.Typ[types.Int])
	assert.Equal(t, Con("Map", Con("string"), Con("int")), goTypeToExpr(m))
}

func TestGoTypeToExprMapsPointer(t *testing.T) {
	p := types.NewPointer(types.Typ[types.Int])
	assert.Equal(t, Con("Pointer", Con("int")), goTypeToExpr(p))
}

func TestGoTypeToExprEmptyInterfaceIsUnknown(t *testing.T) {
	iface := types.NewInterfaceType(nil, nil)
	iface.Complete()
	assert.True(t, goTypeToExpr(iface).Equal(Unknown))
}

func TestGoTypeToExprPreservesNamedTypeIdentity(t *testing.T) {
	pkg := types.NewPackage("example.com/pkg", "pkg")
	named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "MyInt", nil), types.Typ[types.Int], nil)
	assert.Equal(t, Con("MyInt"), goTypeToExpr(named))
}

func TestSignatureReturnExprNoResultsIsUnit(t *testing.T) {
	sig := sigReturning()
	assert.Equal(t, Con("unit"), signatureReturnExpr(sig))
}

func TestSignatureReturnExprSingleResult(t *testing.T) {
	sig := sigReturning(types.Typ[types.Int])
	assert.Equal(t, Con("int"), signatureReturnExpr(sig))
}

func TestSignatureReturnExprMultipleResultsJoinIntoUnion(t *testing.T) {
	sig := sigReturning(types.Typ[types.Int], types.Typ[types.String])
	result := signatureReturnExpr(sig)
	assert.Equal(t, "Union", result.Name)
	assert.Len(t, result.Args, 2)
}

func TestResolveFunctionTypeFindsAndCachesLoadedPackage(t *testing.T) {
	loadCount := 0
	pkg := fakeFuncPackage(t, "example.com/ext", map[string]*types.Signature{
		"Foo": sigReturning(types.Typ[types.Int]),
	})
	r := newExternalResolverWithLoader(func(pkgPath string) (*packages.Package, error) {
		loadCount++
		return pkg, nil
	})

	typ, err := r.ResolveFunctionType("example.com/ext", "Foo")
	require.NoError(t, err)
	assert.Equal(t, Con("int"), typ)

	_, err = r.ResolveFunctionType("example.com/ext", "Foo")
	require.NoError(t, err)
	assert.Equal(t, 1, loadCount) // second call hits the cache, doesn't reload
}

func TestResolveFunctionTypeMissingFunctionErrors(t *testing.T) {
	pkg := fakeFuncPackage(t, "example.com/ext", map[string]*types.Signature{})
	r := newExternalResolverWithLoader(func(pkgPath string) (*packages.Package, error) { return pkg, nil })

	_, err := r.ResolveFunctionType("example.com/ext", "Missing")
	assert.Error(t, err)
}

func TestResolveFunctionTypePropagatesLoadError(t *testing.T) {
	r := newExternalResolverWithLoader(func(pkgPath string) (*packages.Package, error) {
		return nil, errors.New("load failed")
	})
	_, err := r.ResolveFunctionType("example.com/broken", "Foo")
	assert.Error(t, err)
}
