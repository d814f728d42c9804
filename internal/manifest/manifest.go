// Package manifest loads a package directory's tea.hcl into typed
// structures. The rest of the build only ever consumes the typed result;
// nothing downstream touches raw HCL.
package manifest

import "errors"

// FileName is the manifest file every package directory must contain.
const FileName = "tea.hcl"

// The implicit platform feature names. Every Leaf's feature universe starts
// with these two, ahead of whatever the manifest declares.
const (
	FeatureWindows = "windows"
	FeatureLinux   = "linux"
)

// PlatformFeatures returns the implicit platform feature names in universe
// order.
func PlatformFeatures() []string {
	return []string{FeatureWindows, FeatureLinux}
}

var (
	// ErrNotFound indicates a package directory has no manifest file.
	ErrNotFound = errors.New("manifest not found")

	// ErrBadDependency indicates a dependency entry that is not an object
	// carrying a path.
	ErrBadDependency = errors.New("dependency must be an object with a path")
)

// Package identifies a package. Name doubles as the archive/binary stem.
type Package struct {
	Name     string
	Version  string
	Features []string
}

// Dependency declares one local-path dependency together with the feature
// names to request from it. Path is relative to the declaring manifest's
// directory and is the only supported locator.
type Dependency struct {
	Name     string
	Path     string
	Features []string
}

// Define is a preprocessor symbol with an optional substitution value. An
// empty Value means the symbol is defined bare, with no substitution.
type Define struct {
	Name  string
	Value string
}

// Dependencies holds the base dependency list plus per-feature lists keyed
// by feature name. Within-list order follows manifest declaration order.
type Dependencies struct {
	Base    []Dependency
	Feature map[string][]Dependency
}

// Defines mirrors Dependencies for preprocessor defines.
type Defines struct {
	Base    []Define
	Feature map[string][]Define
}

// Libraries mirrors Dependencies for system library names.
type Libraries struct {
	Base    []string
	Feature map[string][]string
}

// Manifest is the fully typed content of one tea.hcl. It is immutable once
// loaded and owned by the Leaf that loaded it.
type Manifest struct {
	Package      Package
	Dependencies Dependencies
	Defines      Defines
	Libraries    Libraries
}

// FeatureUniverse returns every feature name this manifest knows: the two
// implicit platform names followed by the declared names, in declaration
// order.
func (m *Manifest) FeatureUniverse() []string {
	return append(PlatformFeatures(), m.Package.Features...)
}
