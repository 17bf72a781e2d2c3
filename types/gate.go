package types

import "fmt"

// GatesConfig is the content of a gate file
type GatesConfig struct {
	Gates []GateConfig `yaml:"gates" toml:"gates"`
}

// GateConfig represents a named selection of suites
type GateConfig struct {
	ID          string        `yaml:"id" toml:"id"`
	Description string        `yaml:"description" toml:"description"`
	Inherits    []string      `yaml:"inherits,omitempty" toml:"inherits"`
	Suites      []SuiteConfig `yaml:"suites,omitempty" toml:"suites"`
}

// SuiteConfig selects a suite by its display name
type SuiteConfig struct {
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description,omitempty" toml:"description"`
	Skip        []string `yaml:"skip,omitempty" toml:"skip"` // Unit names or descriptions to report as skipped
}

// Suite returns the gate's configuration for the named suite.
func (g *GateConfig) Suite(name string) (SuiteConfig, bool) {
	for _, s := range g.Suites {
		if s.Name == name {
			return s, true
		}
	}
	return SuiteConfig{}, false
}

// ResolveInherited merges the suites of the gates listed in Inherits into g.
//
// Inheritance is recursive: if gate C inherits from B, and B inherits from A,
// C gets the suites of both. A suite already selected by the child keeps the
// child's configuration.
func (g *GateConfig) ResolveInherited(gates map[string]GateConfig) error {
	processed := make(map[string]bool)
	return g.resolveInheritedRecursive(gates, processed)
}

func (g *GateConfig) resolveInheritedRecursive(gates map[string]GateConfig, processed map[string]bool) error {
	if len(g.Inherits) == 0 {
		return nil
	}

	merged := make([]SuiteConfig, 0, len(g.Suites))
	seen := make(map[string]bool)
	for _, s := range g.Suites {
		if !seen[s.Name] {
			merged = append(merged, s)
			seen[s.Name] = true
		}
	}

	for _, inheritFrom := range g.Inherits {
		if processed[inheritFrom] {
			return fmt.Errorf("circular inheritance detected for gate %q", inheritFrom)
		}

		parent, ok := gates[inheritFrom]
		if !ok {
			return fmt.Errorf("gate %q inherits from non-existent gate %q", g.ID, inheritFrom)
		}

		processed[inheritFrom] = true
		if err := parent.resolveInheritedRecursive(gates, processed); err != nil {
			return fmt.Errorf("resolving inheritance for parent gate %q: %w", inheritFrom, err)
		}
		delete(processed, inheritFrom)

		for _, s := range parent.Suites {
			if !seen[s.Name] {
				merged = append(merged, s)
				seen[s.Name] = true
			}
		}
	}

	g.Suites = merged
	return nil
}
