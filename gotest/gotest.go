// Package gotest runs activated suites as go test subtests.
package gotest

import (
	"slices"
	"testing"

	suite "github.com/ethereum-optimism/infra/op-suite"
)

// Registrar collects the units registered by activations so they can be run
// as subtests of one *testing.T.
type Registrar struct {
	units []suite.Unit
}

var _ suite.Registrar = (*Registrar)(nil)

// Register implements suite.Registrar.
func (r *Registrar) Register(u suite.Unit) {
	r.units = append(r.units, u)
}

// Units returns the collected units in registration order.
func (r *Registrar) Units() []suite.Unit {
	return slices.Clone(r.units)
}

// Run activates every suite and runs each registered unit with t.Run. Ignored
// units are skipped. When any unit is marked only, the others are skipped.
func Run(t *testing.T, activators ...suite.Activator) {
	t.Helper()

	r := &Registrar{}
	for _, a := range activators {
		if err := a.Activate(r); err != nil {
			t.Fatalf("activating suite: %v", err)
		}
	}
	r.run(t)
}

func (r *Registrar) run(t *testing.T) {
	onlyUsed := slices.ContainsFunc(r.units, func(u suite.Unit) bool { return u.Only && !u.Ignore })
	for _, u := range r.units {
		t.Run(u.Name, func(t *testing.T) {
			if u.Ignore {
				t.Skip("ignored")
			}
			if onlyUsed && !u.Only {
				t.Skip("filtered by only")
			}
			if err := u.Fn(t.Context()); err != nil {
				t.Fatal(err)
			}
		})
	}
}
