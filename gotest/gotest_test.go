package gotest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	suite "github.com/ethereum-optimism/infra/op-suite"
	"github.com/ethereum-optimism/infra/op-suite/metadata"
)

type counterSuite struct {
	setups    int
	teardowns int
	ran       *int
	finished  bool
}

func (s *counterSuite) SetupSuite(context.Context) error {
	s.setups = 0
	s.teardowns = 0
	return nil
}

func (s *counterSuite) SetupTest(context.Context) error {
	s.setups++
	return nil
}

func (s *counterSuite) TearDownTest(context.Context) error {
	s.teardowns++
	return nil
}

func (s *counterSuite) TearDownSuite(context.Context) error {
	s.finished = true
	return nil
}

type namedSuite struct{}

func TestRun(t *testing.T) {
	ran := 0
	var counter *counterSuite

	store := metadata.NewStore()
	counterDef := suite.NewDefinition[counterSuite](store).
		Constructor(func() (*counterSuite, error) {
			counter = &counterSuite{ran: &ran}
			return counter, nil
		})
	inc := func(s *counterSuite, ctx context.Context) error {
		*s.ran++
		return nil
	}
	counterDef.Member("basicTest", inc).Test()
	counterDef.Member("asyncTest", inc).Test()
	counterDef.Member("testWithDesc", inc).Test("Test description")

	namedDef := suite.NewDefinition[namedSuite](store)
	namedDef.Member("simpleTest", func(*namedSuite, context.Context) error { return nil }).Test()
	namedDef.Member("Complex test name", func(*namedSuite, context.Context) error { return nil }).Test()
	namedDef.Member("failingTest", func(*namedSuite, context.Context) error {
		return errors.New("1 != 2")
	}).Test().Ignore()

	r := &Registrar{}
	require.NoError(t, counterDef.Activate(r))
	require.NoError(t, namedDef.Named("custom name").Activate(r))

	var names []string
	for _, u := range r.Units() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{
		"[counterSuite] basicTest",
		"[counterSuite] asyncTest",
		"[counterSuite] Test description",
		"custom name simpleTest",
		"custom name Complex test name",
		"custom name failingTest",
	}, names)

	r.run(t)

	assert.Equal(t, 3, ran)
	require.NotNil(t, counter)
	assert.True(t, counter.finished)
	assert.Equal(t, 3, counter.setups)
	assert.Equal(t, 3, counter.teardowns)
}

type onlySuite struct {
	ran []string
}

func TestRunOnly(t *testing.T) {
	var instance *onlySuite
	d := suite.NewDefinition[onlySuite](metadata.NewStore()).
		Constructor(func() (*onlySuite, error) {
			instance = &onlySuite{}
			return instance, nil
		})
	for _, key := range []string{"a", "b", "c"} {
		m := d.Member(key, func(s *onlySuite, ctx context.Context) error {
			s.ran = append(s.ran, key)
			return nil
		}).Test()
		if key == "b" {
			m.Only()
		}
	}

	Run(t, d)
	assert.Equal(t, []string{"b"}, instance.ran)
}
