// Package suite groups related tests into suites with lifecycle hooks and
// registers each test as an independent unit with an external runner.
//
// A suite is a struct type. Its tests are bound explicitly at definition time:
//
//	var counter = suite.Define[CounterSuite]()
//
//	func init() {
//		counter.Member("basicTest", (*CounterSuite).BasicTest).Test()
//		counter.Member("testWithDesc", (*CounterSuite).Described).Test("Test description")
//		counter.Member("failingTest", (*CounterSuite).Failing).Test().Ignore()
//	}
//
// Activating the definition builds one instance and registers one Unit per
// annotated member. Hooks are picked up from the instance when it implements
// SetupAllSuite, TearDownAllSuite, SetupTestSuite or TearDownTestSuite.
package suite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-suite/metadata"
)

// MemberFunc is the body of a suite test, called on the suite instance.
type MemberFunc[T any] func(s *T, ctx context.Context) error

// Definition describes a suite type T: its member bodies, its constructor and
// where its annotations are stored.
type Definition[T any] struct {
	id    metadata.SuiteID
	store *metadata.Store

	mu          sync.RWMutex
	bodies      map[string]MemberFunc[T]
	constructor func() (*T, error)
	log         log.Logger
}

var (
	definitionsMu sync.Mutex
	definitions   = make(map[metadata.SuiteID]any)
)

// Define returns the process-wide definition of suite T, creating it on first
// use. Annotations go to metadata.Default.
func Define[T any]() *Definition[T] {
	id := metadata.IdentityOf[T]()

	definitionsMu.Lock()
	defer definitionsMu.Unlock()

	if d, ok := definitions[id]; ok {
		return d.(*Definition[T])
	}
	d := newDefinition[T](metadata.Default)
	definitions[id] = d
	return d
}

// NewDefinition creates a standalone definition of T that keeps its
// annotations in store. Annotations and member bodies live together, so a
// definition backed by metadata.Default is the process-wide one: passing
// metadata.Default returns Define[T]().
func NewDefinition[T any](store *metadata.Store) *Definition[T] {
	if store == metadata.Default {
		return Define[T]()
	}
	return newDefinition[T](store)
}

func newDefinition[T any](store *metadata.Store) *Definition[T] {
	return &Definition[T]{
		id:     metadata.IdentityOf[T](),
		store:  store,
		bodies: make(map[string]MemberFunc[T]),
	}
}

// ID returns the identity the definition's annotations are keyed by.
func (d *Definition[T]) ID() metadata.SuiteID {
	return d.id
}

// Name returns the default display name, "[TypeName]".
func (d *Definition[T]) Name() string {
	return "[" + d.id.Name() + "]"
}

// Constructor sets the function used to build the suite instance on
// activation. Without one the instance is new(T).
func (d *Definition[T]) Constructor(fn func() (*T, error)) *Definition[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.constructor = fn
	return d
}

// Logger sets the logger used when the suite is activated. Without one the
// root logger is used.
func (d *Definition[T]) Logger(l log.Logger) *Definition[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = l
	return d
}

func (d *Definition[T]) logger() log.Logger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.log == nil {
		return log.Root()
	}
	return d.log
}

// Member binds fn as the body of member key and returns a handle used to
// annotate it. Binding alone does not make the member a test.
func (d *Definition[T]) Member(key string, fn MemberFunc[T]) *Member[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bodies[key] = fn
	return &Member[T]{def: d, key: key}
}

// Activate activates the suite under its default display name.
func (d *Definition[T]) Activate(r Registrar) error {
	return Activate(r, d)
}

// Named returns an Activator that activates the suite under displayName.
func (d *Definition[T]) Named(displayName string) Activator {
	return &namedActivator[T]{def: d, name: displayName}
}

type namedActivator[T any] struct {
	def  *Definition[T]
	name string
}

func (n *namedActivator[T]) Activate(r Registrar) error {
	return Activate(r, n.def, n.name)
}

// Name returns the display name units are registered under.
func (n *namedActivator[T]) Name() string {
	if n.name == "" {
		return n.def.Name()
	}
	return n.name
}

func (d *Definition[T]) body(key string) MemberFunc[T] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bodies[key]
}

func (d *Definition[T]) construct() (*T, error) {
	d.mu.RLock()
	ctor := d.constructor
	d.mu.RUnlock()

	if ctor == nil {
		return new(T), nil
	}
	instance, err := ctor()
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("constructor returned a nil suite")
	}
	return instance, nil
}

// Member is a handle on one member of a suite definition.
type Member[T any] struct {
	def *Definition[T]
	key string
}

// Key returns the member key.
func (m *Member[T]) Key() string {
	return m.key
}

// Config returns the member's stored configuration, creating it if needed.
func (m *Member[T]) Config() *metadata.TestConfig {
	return m.def.store.ConfigFor(m.def.id, m.key)
}

// Test marks the member as a test. The optional description replaces the
// member key in the unit name; without one an earlier description is kept.
func (m *Member[T]) Test(description ...string) *Member[T] {
	cfg := m.Config()
	if len(description) > 0 {
		cfg.Description = description[0]
	}
	return m
}

// Ignore registers the member's unit with Ignore set.
func (m *Member[T]) Ignore() *Member[T] {
	m.Config().Ignore = true
	return m
}

// Only registers the member's unit with Only set.
func (m *Member[T]) Only() *Member[T] {
	m.Config().Only = true
	return m
}

// String implements fmt.Stringer.
func (m *Member[T]) String() string {
	return fmt.Sprintf("%s.%s", m.def.id.Name(), m.key)
}
