package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teapot-build/teapot/internal/manifest"
)

func TestNewPackage_Binary(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()

	require.NoError(t, NewPackage(parent, "kettle", Binary))

	m, err := manifest.Load(context.Background(), filepath.Join(parent, "kettle"))
	require.NoError(t, err)
	assert.Equal(t, "kettle", m.Package.Name)
	assert.Equal(t, "0.1.0", m.Package.Version)
	assert.Empty(t, m.Dependencies.Base)

	src, err := os.ReadFile(filepath.Join(parent, "kettle", "src", "main.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "int kettle_main(void)")
}

func TestNewPackage_Library(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()

	require.NoError(t, NewPackage(parent, "steep", Library))

	header, err := os.ReadFile(filepath.Join(parent, "steep", "src", "steep.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "#pragma once")
	assert.Contains(t, string(header), "int steep_add(int a, int b);")

	impl, err := os.ReadFile(filepath.Join(parent, "steep", "src", "steep.c"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), `#include "steep.h"`)

	_, err = os.Stat(filepath.Join(parent, "steep", "src", "main.c"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewPackage_ExistingDirectory(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "taken"), 0o755))

	err := NewPackage(parent, "taken", Library)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddDependency(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	require.NoError(t, NewPackage(parent, "app", Binary))
	dir := filepath.Join(parent, "app")

	require.NoError(t, AddDependency(dir, "mathx", "../mathx", nil))
	require.NoError(t, AddDependency(dir, "logx", "../logx", []string{"color", "timestamps"}))

	m, err := manifest.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, m.Dependencies.Base, 2)
	assert.Equal(t, manifest.Dependency{Name: "mathx", Path: "../mathx"}, m.Dependencies.Base[0])
	assert.Equal(t, manifest.Dependency{
		Name:     "logx",
		Path:     "../logx",
		Features: []string{"color", "timestamps"},
	}, m.Dependencies.Base[1])
}

func TestAddDependency_PreservesExistingContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := `package {
  name    = "app"
  version = "2.0.0"
}

feature "fast" {}

dependencies {
  old = { path = "../old" }
}

defines {
  MAX = "9"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(src), 0o644))

	require.NoError(t, AddDependency(dir, "fresh", "../fresh", nil))

	out, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"../old"`)
	assert.Contains(t, string(out), `MAX = "9"`)

	m, err := manifest.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, m.Dependencies.Base, 2)
	assert.Equal(t, "old", m.Dependencies.Base[0].Name)
	assert.Equal(t, "fresh", m.Dependencies.Base[1].Name)
}

func TestAddDependency_Duplicate(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	require.NoError(t, NewPackage(parent, "app", Binary))
	dir := filepath.Join(parent, "app")

	require.NoError(t, AddDependency(dir, "dup", "../dup", nil))
	err := AddDependency(dir, "dup", "../elsewhere", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestAddDependency_NoManifest(t *testing.T) {
	t.Parallel()
	err := AddDependency(t.TempDir(), "x", "../x", nil)
	require.ErrorIs(t, err, manifest.ErrNotFound)
}
