// Package scaffold creates new package directories and edits manifests for
// the `new` and `add` commands. It never participates in builds; it only
// writes files.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/teapot-build/teapot/internal/manifest"
)

// Kind selects the starter sources a new package gets.
type Kind int

const (
	// Library scaffolds a header plus an implementation file.
	Library Kind = iota
	// Binary scaffolds a main source defining the conventional entry
	// function the build's generated shim calls.
	Binary
)

// NewPackage creates <parent>/<name> with a src directory, a starter
// manifest and starter sources. It refuses to touch an existing directory.
func NewPackage(parent, name string, kind Kind) error {
	dir := filepath.Join(parent, name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %s already exists", dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		return fmt.Errorf("creating package directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), starterManifest(name), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", manifest.FileName, err)
	}

	var sources map[string]string
	switch kind {
	case Binary:
		sources = map[string]string{
			"main.c": fmt.Sprintf(binaryTemplate, name),
		}
	default:
		sources = map[string]string{
			name + ".h": fmt.Sprintf(headerTemplate, name),
			name + ".c": fmt.Sprintf(libraryTemplate, name),
		}
	}
	for file, content := range sources {
		if err := os.WriteFile(filepath.Join(dir, "src", file), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing src/%s: %w", file, err)
		}
	}
	return nil
}

func starterManifest(name string) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	pkg := body.AppendNewBlock("package", nil)
	pkg.Body().SetAttributeValue("name", cty.StringVal(name))
	pkg.Body().SetAttributeValue("version", cty.StringVal("0.1.0"))
	body.AppendNewline()
	body.AppendNewBlock("dependencies", nil)
	return f.Bytes()
}

const binaryTemplate = `#include <stdio.h>

int %s_main(void) {
	printf("Hello, World!\n");
	return 0;
}
`

const headerTemplate = `#pragma once

int %s_add(int a, int b);
`

const libraryTemplate = `#include "%[1]s.h"

int %[1]s_add(int a, int b) {
	return a + b;
}
`
