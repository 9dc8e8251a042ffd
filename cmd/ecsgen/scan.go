package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
)

const ecsPath = "github.com/plus3/entstore/ecs"

var errNoComponents = errors.New("no component types found")

type component struct {
	TypeName string
	Name     string // value returned by ComponentName, when it is a constant
}

func loadPackage(pattern string) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("load %s: matched %d packages, want 1", pattern, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("load %s: %v", pattern, pkg.Errors[0])
	}
	return pkg, nil
}

// findComponents returns the package's component types sorted by type name.
func findComponents(pkg *packages.Package) ([]component, error) {
	scope := pkg.Types.Scope()

	var found []component
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		if !embedsBaseComponent(named) || !hasComponentName(named) {
			continue
		}
		found = append(found, component{
			TypeName: name,
			Name:     declaredName(pkg, named),
		})
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", pkg.PkgPath, errNoComponents)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].TypeName < found[j].TypeName })
	if err := checkDuplicates(found); err != nil {
		return nil, err
	}
	return found, nil
}

func embedsBaseComponent(named *types.Named) bool {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Embedded() {
			continue
		}
		fieldNamed, ok := field.Type().(*types.Named)
		if !ok {
			continue
		}
		obj := fieldNamed.Obj()
		if obj.Name() == "BaseComponent" && obj.Pkg() != nil && obj.Pkg().Path() == ecsPath {
			return true
		}
	}
	return false
}

func hasComponentName(named *types.Named) bool {
	sel := types.NewMethodSet(types.NewPointer(named)).Lookup(named.Obj().Pkg(), "ComponentName")
	if sel == nil {
		return false
	}
	sig, ok := sel.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	basic, ok := sig.Results().At(0).Type().(*types.Basic)
	return ok && basic.Kind() == types.String
}

// ecsQualifier is the prefix for ecs identifiers in generated code.
func ecsQualifier(pkgPath string) string {
	if pkgPath == ecsPath {
		return ""
	}
	return "ecs."
}

func outputPath(pkg *packages.Package, out string) string {
	if filepath.IsAbs(out) || len(pkg.GoFiles) == 0 {
		return out
	}
	return filepath.Join(filepath.Dir(pkg.GoFiles[0]), out)
}

// declaredName extracts the string constant returned by the type's
// ComponentName method, or "" when the body is not a single constant return.
func declaredName(pkg *packages.Package, named *types.Named) string {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || fn.Name.Name != "ComponentName" || fn.Body == nil {
				continue
			}
			if receiverName(fn.Recv.List[0].Type) != named.Obj().Name() {
				continue
			}
			if len(fn.Body.List) != 1 {
				return ""
			}
			ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				return ""
			}
			tv, ok := pkg.TypesInfo.Types[ret.Results[0]]
			if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
				return ""
			}
			return constant.StringVal(tv.Value)
		}
	}
	return ""
}

func receiverName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// checkDuplicates reports two types declaring the same component name.
func checkDuplicates(components []component) error {
	seen := make(map[string]string, len(components))
	for _, c := range components {
		if c.Name == "" {
			continue
		}
		if other, ok := seen[c.Name]; ok {
			return fmt.Errorf("types %s and %s both declare component name %q", other, c.TypeName, c.Name)
		}
		seen[c.Name] = c.TypeName
	}
	return nil
}
