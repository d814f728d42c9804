package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/teapot-build/teapot/internal/ctxlog"
)

// Load reads and decodes the manifest in dir. A missing file is reported as
// ErrNotFound so callers can distinguish it from a malformed one.
func Load(ctx context.Context, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s in %s: %w", FileName, dir, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected body type", path)
	}

	m, err := decode(body, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Manifest loaded.",
		"path", path,
		"package", m.Package.Name,
		"features", m.Package.Features,
		"dependencies", len(m.Dependencies.Base))
	return m, nil
}

func decode(body *hclsyntax.Body, path string) (*Manifest, error) {
	var (
		pkgBlock  *hclsyntax.Block
		depsBlock *hclsyntax.Block
		defsBlock *hclsyntax.Block
		libsBlock *hclsyntax.Block
	)
	for _, block := range body.Blocks {
		switch block.Type {
		case "package":
			pkgBlock = block
		case "dependencies":
			depsBlock = block
		case "defines":
			defsBlock = block
		case "libraries":
			libsBlock = block
		default:
			return nil, fmt.Errorf("%s: unknown block %q", path, block.Type)
		}
	}
	if pkgBlock == nil {
		return nil, fmt.Errorf("%s: missing package block", path)
	}
	if depsBlock == nil {
		return nil, fmt.Errorf("%s: missing dependencies block", path)
	}

	pkg, err := decodePackage(pkgBlock, path)
	if err != nil {
		return nil, err
	}
	universe := append(PlatformFeatures(), pkg.Features...)

	m := &Manifest{Package: pkg}
	m.Dependencies, err = decodeDependencies(depsBlock, universe, path)
	if err != nil {
		return nil, err
	}
	m.Defines, err = decodeDefines(defsBlock, universe, path)
	if err != nil {
		return nil, err
	}
	m.Libraries, err = decodeLibraries(libsBlock, universe, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodePackage(block *hclsyntax.Block, path string) (Package, error) {
	var pkg Package
	for _, attr := range orderedAttributes(block.Body) {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return pkg, fmt.Errorf("%s: package.%s: %w", path, attr.Name, diags)
		}
		switch attr.Name {
		case "name", "version":
			if val.Type() != cty.String {
				return pkg, fmt.Errorf("%s: package.%s must be a string", path, attr.Name)
			}
			if attr.Name == "name" {
				pkg.Name = val.AsString()
			} else {
				pkg.Version = val.AsString()
			}
		case "features":
			names, err := stringList(val)
			if err != nil {
				return pkg, fmt.Errorf("%s: package.features: %w", path, err)
			}
			pkg.Features = names
		default:
			return pkg, fmt.Errorf("%s: unknown package attribute %q", path, attr.Name)
		}
	}
	if len(block.Body.Blocks) > 0 {
		return pkg, fmt.Errorf("%s: package block takes no nested blocks", path)
	}
	if pkg.Name == "" {
		return pkg, fmt.Errorf("%s: package.name is required", path)
	}
	if pkg.Version == "" {
		return pkg, fmt.Errorf("%s: package.version is required", path)
	}
	for _, name := range pkg.Features {
		if slices.Contains(PlatformFeatures(), name) {
			return pkg, fmt.Errorf("%s: feature %q collides with an implicit platform feature", path, name)
		}
	}
	return pkg, nil
}

func decodeDependencies(block *hclsyntax.Block, universe []string, path string) (Dependencies, error) {
	deps := Dependencies{Feature: map[string][]Dependency{}}
	err := eachGatedEntry(block, universe, path, func(feature string, attr *hclsyntax.Attribute) error {
		dep, err := decodeDependency(attr)
		if err != nil {
			return err
		}
		if feature == "" {
			deps.Base = append(deps.Base, dep)
		} else {
			deps.Feature[feature] = append(deps.Feature[feature], dep)
		}
		return nil
	})
	return deps, err
}

func decodeDependency(attr *hclsyntax.Attribute) (Dependency, error) {
	dep := Dependency{Name: attr.Name}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return dep, fmt.Errorf("dependency %q: %w", attr.Name, diags)
	}
	if !val.Type().IsObjectType() || !val.Type().HasAttribute("path") {
		return dep, fmt.Errorf("dependency %q: %w", attr.Name, ErrBadDependency)
	}
	pathVal := val.GetAttr("path")
	if pathVal.Type() != cty.String {
		return dep, fmt.Errorf("dependency %q: %w", attr.Name, ErrBadDependency)
	}
	dep.Path = pathVal.AsString()
	if val.Type().HasAttribute("features") {
		names, err := stringList(val.GetAttr("features"))
		if err != nil {
			return dep, fmt.Errorf("dependency %q features: %w", attr.Name, err)
		}
		dep.Features = names
	}
	return dep, nil
}

func decodeDefines(block *hclsyntax.Block, universe []string, path string) (Defines, error) {
	defs := Defines{Feature: map[string][]Define{}}
	if block == nil {
		return defs, nil
	}
	err := eachGatedEntry(block, universe, path, func(feature string, attr *hclsyntax.Attribute) error {
		def, err := decodeDefine(attr)
		if err != nil {
			return err
		}
		if feature == "" {
			defs.Base = append(defs.Base, def)
		} else {
			defs.Feature[feature] = append(defs.Feature[feature], def)
		}
		return nil
	})
	return defs, err
}

// decodeDefine stringifies a scalar define value. Strings pass through,
// numbers and booleans are converted; an empty string means the define
// carries no substitution value.
func decodeDefine(attr *hclsyntax.Attribute) (Define, error) {
	def := Define{Name: attr.Name}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return def, fmt.Errorf("define %q: %w", attr.Name, diags)
	}
	if !val.Type().IsPrimitiveType() {
		return def, fmt.Errorf("define %q: value must be a string, number or bool", attr.Name)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return def, fmt.Errorf("define %q: %w", attr.Name, err)
	}
	def.Value = str.AsString()
	return def, nil
}

func decodeLibraries(block *hclsyntax.Block, universe []string, path string) (Libraries, error) {
	libs := Libraries{Feature: map[string][]string{}}
	if block == nil {
		return libs, nil
	}
	// Attribute names are the system library names; values are ignored by
	// convention (write `true`).
	err := eachGatedEntry(block, universe, path, func(feature string, attr *hclsyntax.Attribute) error {
		if feature == "" {
			libs.Base = append(libs.Base, attr.Name)
		} else {
			libs.Feature[feature] = append(libs.Feature[feature], attr.Name)
		}
		return nil
	})
	return libs, err
}

// eachGatedEntry walks one base/per-feature section: direct attributes are
// the base entries, `feature "<name>" { ... }` blocks hold the per-feature
// entries. Entries are visited in declaration order.
func eachGatedEntry(block *hclsyntax.Block, universe []string, path string, fn func(feature string, attr *hclsyntax.Attribute) error) error {
	for _, attr := range orderedAttributes(block.Body) {
		if err := fn("", attr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, nested := range block.Body.Blocks {
		if nested.Type != "feature" || len(nested.Labels) != 1 {
			return fmt.Errorf("%s: %s block only allows feature \"<name>\" sub-blocks", path, block.Type)
		}
		name := nested.Labels[0]
		if !slices.Contains(universe, name) {
			return fmt.Errorf("%s: %s gates on unknown feature %q", path, block.Type, name)
		}
		if len(nested.Body.Blocks) > 0 {
			return fmt.Errorf("%s: feature %q block takes no nested blocks", path, name)
		}
		for _, attr := range orderedAttributes(nested.Body) {
			if err := fn(name, attr); err != nil {
				return fmt.Errorf("%s: feature %q: %w", path, name, err)
			}
		}
	}
	return nil
}

// orderedAttributes returns a body's attributes in source order. The
// hclsyntax AST keys them by name, so declaration order has to be recovered
// from source ranges.
func orderedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

func stringList(val cty.Value) ([]string, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of strings")
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String {
			return nil, fmt.Errorf("expected a list of strings")
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
