package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	suite "github.com/ethereum-optimism/infra/op-suite"
)

// ranTests counts the CounterSuite tests that completed.
var ranTests atomic.Int32

// CounterSuite counts its per-test setups and teardowns.
type CounterSuite struct {
	setups    int
	teardowns int
}

func (s *CounterSuite) SetupSuite(context.Context) error {
	log.Info("setup")
	s.setups = 0
	s.teardowns = 0
	return nil
}

func (s *CounterSuite) SetupTest(context.Context) error {
	s.setups++
	return nil
}

func (s *CounterSuite) TearDownTest(context.Context) error {
	s.teardowns++
	return nil
}

func (s *CounterSuite) TearDownSuite(ctx context.Context) error {
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Info("teardown", "setups", s.setups, "teardowns", s.teardowns)
	return nil
}

func (s *CounterSuite) BasicTest(context.Context) error {
	ranTests.Add(1)
	return nil
}

func (s *CounterSuite) AsyncTest(ctx context.Context) error {
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	ranTests.Add(1)
	return nil
}

func (s *CounterSuite) TestWithDesc(context.Context) error {
	ranTests.Add(1)
	return nil
}

// NamedSuite is registered under a custom display name.
type NamedSuite struct{}

func (s *NamedSuite) SimpleTest(context.Context) error {
	return expectEqual(1, 1)
}

func (s *NamedSuite) ComplexName(context.Context) error {
	return expectEqual(2, 2)
}

func (s *NamedSuite) FailingTest(context.Context) error {
	return expectEqual(1, 2)
}

func expectEqual(want, got int) error {
	if want != got {
		return fmt.Errorf("expected %d, got %d", want, got)
	}
	return nil
}

var (
	counterSuite = suite.Define[CounterSuite]()
	namedSuite   = suite.Define[NamedSuite]()
)

func init() {
	counterSuite.Member("basicTest", (*CounterSuite).BasicTest).Test()
	counterSuite.Member("asyncTest", (*CounterSuite).AsyncTest).Test()
	counterSuite.Member("testWithDesc", (*CounterSuite).TestWithDesc).Test("Test description")

	namedSuite.Member("simpleTest", (*NamedSuite).SimpleTest).Test()
	namedSuite.Member("Complex test name", (*NamedSuite).ComplexName).Test()
	namedSuite.Member("failingTest", (*NamedSuite).FailingTest).Test().Ignore()
}

// Suites returns the suites run by the op-suite command.
func Suites() []suite.Activator {
	return []suite.Activator{
		counterSuite,
		namedSuite.Named("custom name"),
	}
}
