package suite

import "context"

// Unit is one runnable test handed to a Registrar.
type Unit struct {
	// Name is the suite display name followed by the test description.
	Name string
	// Suite is the display name of the suite the unit belongs to.
	Suite string
	// Ignore asks the runner to register the unit without executing it.
	Ignore bool
	// Only asks the runner to execute only units marked this way.
	Only bool
	// Fn runs suite/test setup, the test member and teardown.
	Fn func(ctx context.Context) error
}

// Registrar accepts units from an activation. Registering a unit must not
// execute it.
type Registrar interface {
	Register(u Unit)
}

// RegistrarFunc adapts a function to the Registrar interface.
type RegistrarFunc func(u Unit)

// Register implements Registrar.
func (f RegistrarFunc) Register(u Unit) {
	f(u)
}

// Activator activates a suite against a registrar.
type Activator interface {
	Activate(r Registrar) error
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func(r Registrar) error

// Activate implements Activator.
func (f ActivatorFunc) Activate(r Registrar) error {
	return f(r)
}
