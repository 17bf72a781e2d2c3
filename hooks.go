package suite

import "context"

// SetupAllSuite is implemented by suites that need setup before their first test.
type SetupAllSuite interface {
	SetupSuite(ctx context.Context) error
}

// TearDownAllSuite is implemented by suites that need teardown after their last test.
type TearDownAllSuite interface {
	TearDownSuite(ctx context.Context) error
}

// SetupTestSuite is implemented by suites that need setup before each test.
type SetupTestSuite interface {
	SetupTest(ctx context.Context) error
}

// TearDownTestSuite is implemented by suites that need teardown after each test.
type TearDownTestSuite interface {
	TearDownTest(ctx context.Context) error
}

// hooks holds the lifecycle methods found on a suite instance. Missing hooks
// are no-ops.
type hooks struct {
	setupSuite    func(ctx context.Context) error
	tearDownSuite func(ctx context.Context) error
	setupTest     func(ctx context.Context) error
	tearDownTest  func(ctx context.Context) error
}

func noop(context.Context) error { return nil }

func hooksOf(instance any) hooks {
	h := hooks{
		setupSuite:    noop,
		tearDownSuite: noop,
		setupTest:     noop,
		tearDownTest:  noop,
	}
	if s, ok := instance.(SetupAllSuite); ok {
		h.setupSuite = s.SetupSuite
	}
	if s, ok := instance.(TearDownAllSuite); ok {
		h.tearDownSuite = s.TearDownSuite
	}
	if s, ok := instance.(SetupTestSuite); ok {
		h.setupTest = s.SetupTest
	}
	if s, ok := instance.(TearDownTestSuite); ok {
		h.tearDownTest = s.TearDownTest
	}
	return h
}
