package suite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum-optimism/infra/op-suite/metadata"
)

// ErrMemberNotBound is returned by a unit whose member was annotated but never
// given a body.
var ErrMemberNotBound = errors.New("suite member has no body")

// Activate builds one instance of the suite and registers a unit with r for
// every annotated member, in annotation order. The unit names are
// displayName followed by the member description or key; displayName defaults
// to "[TypeName]".
//
// No unit body runs during Activate. A suite without annotated members
// registers nothing and is not an error.
func Activate[T any](r Registrar, d *Definition[T], displayName ...string) error {
	name := d.Name()
	if len(displayName) > 0 && displayName[0] != "" {
		name = displayName[0]
	}

	instance, err := d.construct()
	if err != nil {
		return fmt.Errorf("failed to construct suite %s: %w", name, err)
	}

	logger := d.logger()
	meta, ok := d.store.AllConfigs(d.id)
	if !ok {
		logger.Debug("Suite has no tests", "suite", name)
		return nil
	}

	a := &activation[T]{
		instance: instance,
		hooks:    hooksOf(instance),
		total:    meta.Len(),
	}

	meta.Range(func(key string, cfg *metadata.TestConfig) bool {
		desc := cfg.Description
		if desc == "" {
			desc = key
		}
		body := d.body(key)
		r.Register(Unit{
			Name:   name + " " + desc,
			Suite:  name,
			Ignore: cfg.Ignore,
			Only:   cfg.Only,
			Fn: func(ctx context.Context) error {
				return a.run(ctx, key, body)
			},
		})
		return true
	})
	logger.Debug("Suite activated", "suite", name, "units", a.total)
	return nil
}

// activation is the state shared by the units of one Activate call.
type activation[T any] struct {
	instance *T
	hooks    hooks
	total    int

	// mu serializes the units so completedSetups is only touched by one
	// unit at a time, whatever the runner's concurrency.
	mu              sync.Mutex
	completedSetups int
}

// run executes one unit: setup, the member body and teardown. Once the setup
// count has been taken, teardown runs even when test setup or the body fails.
func (a *activation[T]) run(ctx context.Context, key string, body MemberFunc[T]) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.completedSetups == 0 {
		if err := a.hooks.setupSuite(ctx); err != nil {
			return fmt.Errorf("suite setup: %w", err)
		}
	}
	a.completedSetups++

	defer func() {
		if tdErr := a.teardown(ctx); tdErr != nil {
			err = errors.Join(err, tdErr)
		}
	}()

	if err := a.hooks.setupTest(ctx); err != nil {
		return fmt.Errorf("test setup: %w", err)
	}
	if body == nil {
		return fmt.Errorf("%w: %q", ErrMemberNotBound, key)
	}
	return body(a.instance, ctx)
}

func (a *activation[T]) teardown(ctx context.Context) error {
	var errs error
	if err := a.hooks.tearDownTest(ctx); err != nil {
		errs = fmt.Errorf("test teardown: %w", err)
	}
	if a.completedSetups == a.total {
		if err := a.hooks.tearDownSuite(ctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("suite teardown: %w", err))
		}
	}
	return errs
}
