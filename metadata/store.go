// Package metadata holds the per-suite test configuration written by member
// annotations and read back when a suite is activated.
package metadata

import (
	"reflect"
	"sync"
)

// SuiteID identifies a suite definition. All instances of one definition share
// the same SuiteID.
type SuiteID = reflect.Type

// IdentityOf returns the SuiteID of the suite definition T.
func IdentityOf[T any]() SuiteID {
	return reflect.TypeFor[T]()
}

// TestConfig is the configuration of a single suite member.
type TestConfig struct {
	// Description overrides the member key in the unit name. Empty means unset.
	Description string
	// Ignore registers the unit but tells the runner not to execute it.
	Ignore bool
	// Only tells the runner to execute only units marked this way.
	Only bool
}

// SuiteMetadata maps member keys to their configuration, in the order the
// members were first annotated.
type SuiteMetadata struct {
	keys    []string
	configs map[string]*TestConfig
}

func newSuiteMetadata() *SuiteMetadata {
	return &SuiteMetadata{configs: make(map[string]*TestConfig)}
}

// Len returns the number of annotated members.
func (m *SuiteMetadata) Len() int {
	return len(m.keys)
}

// Keys returns the member keys in annotation order.
func (m *SuiteMetadata) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the configuration stored for key, if any.
func (m *SuiteMetadata) Get(key string) (*TestConfig, bool) {
	cfg, ok := m.configs[key]
	return cfg, ok
}

// Range calls fn for each member in annotation order until fn returns false.
func (m *SuiteMetadata) Range(fn func(key string, cfg *TestConfig) bool) {
	for _, key := range m.keys {
		if !fn(key, m.configs[key]) {
			return
		}
	}
}

// Store is a table of suite metadata keyed by suite identity.
type Store struct {
	mu     sync.Mutex
	suites map[SuiteID]*SuiteMetadata
}

// Default is the process-wide store used by suite definitions.
var Default = NewStore()

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{suites: make(map[SuiteID]*SuiteMetadata)}
}

// ConfigFor returns the configuration of member key in suite id, creating an
// empty one on first use. Repeated calls return the same *TestConfig.
func (s *Store) ConfigFor(id SuiteID, key string) *TestConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.suites[id]
	if !ok {
		meta = newSuiteMetadata()
		s.suites[id] = meta
	}

	cfg, ok := meta.configs[key]
	if !ok {
		cfg = &TestConfig{}
		meta.configs[key] = cfg
		meta.keys = append(meta.keys, key)
	}
	return cfg
}

// AllConfigs returns the metadata of suite id. The boolean is false when no
// member of the suite was ever annotated.
func (s *Store) AllConfigs(id SuiteID) (*SuiteMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.suites[id]
	return meta, ok
}
