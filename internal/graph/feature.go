package graph

import "github.com/teapot-build/teapot/internal/manifest"

// Feature is one enable/disable configuration axis, scoped to exactly one
// Leaf instance.
type Feature struct {
	Name    string
	Enabled bool
}

// HostPlatform maps a GOOS value onto the implicit platform feature that is
// auto-added to every Leaf. The caller threads the result through graph
// construction explicitly, so tests can build graphs for an arbitrary
// simulated platform.
func HostPlatform(goos string) string {
	if goos == "windows" {
		return manifest.FeatureWindows
	}
	return manifest.FeatureLinux
}

// ResolveFeatures produces one Feature per name in the universe formed by
// the implicit platform names followed by the declared names. A feature is
// enabled iff its name was requested. Requested names outside the universe
// are silently dropped; that leniency is deliberate.
func ResolveFeatures(declared []string, requested map[string]bool) []Feature {
	universe := append(manifest.PlatformFeatures(), declared...)
	features := make([]Feature, 0, len(universe))
	for _, name := range universe {
		features = append(features, Feature{Name: name, Enabled: requested[name]})
	}
	return features
}

func requestSet(names []string, host string) map[string]bool {
	set := make(map[string]bool, len(names)+1)
	for _, name := range names {
		set[name] = true
	}
	set[host] = true
	return set
}
