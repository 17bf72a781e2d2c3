package metadata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suiteA struct{}
type suiteB struct{}

func TestStore(t *testing.T) {
	t.Run("config for creates empty config", func(t *testing.T) {
		s := NewStore()
		cfg := s.ConfigFor(IdentityOf[suiteA](), "basicTest")
		require.NotNil(t, cfg)
		assert.Equal(t, TestConfig{}, *cfg)
	})

	t.Run("config for returns the same config", func(t *testing.T) {
		s := NewStore()
		id := IdentityOf[suiteA]()

		first := s.ConfigFor(id, "basicTest")
		first.Ignore = true
		second := s.ConfigFor(id, "basicTest")

		assert.Same(t, first, second)
		assert.True(t, second.Ignore)

		meta, ok := s.AllConfigs(id)
		require.True(t, ok)
		assert.Equal(t, 1, meta.Len())
	})

	t.Run("all configs absent for unannotated suite", func(t *testing.T) {
		s := NewStore()
		s.ConfigFor(IdentityOf[suiteA](), "basicTest")

		meta, ok := s.AllConfigs(IdentityOf[suiteB]())
		assert.False(t, ok)
		assert.Nil(t, meta)
	})

	t.Run("suites are keyed by definition", func(t *testing.T) {
		s := NewStore()
		s.ConfigFor(IdentityOf[suiteA](), "shared").Only = true
		s.ConfigFor(IdentityOf[suiteB](), "shared")

		a, ok := s.AllConfigs(IdentityOf[suiteA]())
		require.True(t, ok)
		b, ok := s.AllConfigs(IdentityOf[suiteB]())
		require.True(t, ok)

		cfgA, _ := a.Get("shared")
		cfgB, _ := b.Get("shared")
		assert.True(t, cfgA.Only)
		assert.False(t, cfgB.Only)
	})

	t.Run("identity is stable", func(t *testing.T) {
		assert.True(t, IdentityOf[suiteA]() == IdentityOf[suiteA]())
		assert.False(t, IdentityOf[suiteA]() == IdentityOf[suiteB]())
		assert.False(t, IdentityOf[suiteA]() == IdentityOf[*suiteA]())
	})

	t.Run("keys keep annotation order", func(t *testing.T) {
		s := NewStore()
		id := IdentityOf[suiteA]()
		for _, key := range []string{"zeta", "alpha", "Complex test name", "alpha", "mid"} {
			s.ConfigFor(id, key)
		}

		meta, ok := s.AllConfigs(id)
		require.True(t, ok)
		assert.Equal(t, []string{"zeta", "alpha", "Complex test name", "mid"}, meta.Keys())

		var ranged []string
		meta.Range(func(key string, cfg *TestConfig) bool {
			ranged = append(ranged, key)
			return key != "alpha"
		})
		assert.Equal(t, []string{"zeta", "alpha"}, ranged)
	})

	t.Run("concurrent annotation creates one entry per key", func(t *testing.T) {
		s := NewStore()
		id := IdentityOf[suiteA]()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.ConfigFor(id, "racy")
			}()
		}
		wg.Wait()

		meta, ok := s.AllConfigs(id)
		require.True(t, ok)
		assert.Equal(t, 1, meta.Len())
	})
}
