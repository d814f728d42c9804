package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/teapot-build/teapot/internal/manifest"
)

// AddDependency appends a base dependency entry to dir's manifest, keeping
// the rest of the file byte-for-byte intact.
func AddDependency(dir, name, depPath string, features []string) error {
	path := filepath.Join(dir, manifest.FileName)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no %s in %s: %w", manifest.FileName, dir, manifest.ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	file, diags := hclwrite.ParseConfig(src, path, hcl.InitialPos)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %s: %w", path, diags)
	}

	deps := file.Body().FirstMatchingBlock("dependencies", nil)
	if deps == nil {
		return fmt.Errorf("%s has no dependencies block", path)
	}
	if deps.Body().GetAttribute(name) != nil {
		return fmt.Errorf("dependency %q already declared", name)
	}

	entry := map[string]cty.Value{"path": cty.StringVal(depPath)}
	if len(features) > 0 {
		vals := make([]cty.Value, 0, len(features))
		for _, feature := range features {
			vals = append(vals, cty.StringVal(feature))
		}
		entry["features"] = cty.ListVal(vals)
	}
	deps.Body().SetAttributeValue(name, cty.ObjectVal(entry))

	if err := os.WriteFile(path, file.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
