package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	failure := errors.New("failure")
	r := NewRunnerWith(ctx).Go(
		NamedRun("fail", RunFunc(func(context.Context) error { return failure })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	cancel()
	err := r.Wait()
	require.True(t, errors.Is(err, failure))
	require.Equal(t, "failure", err.Error())
}

func TestRunnerWaitNoError(t *testing.T) {
	r := NewRunner().Go(RunFunc(func(context.Context) error { return nil }))
	require.NoError(t, r.Wait())
	require.NoError(t, r.Wait())
}

type testCloser struct {
	closed int
	ch     chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	close(c.ch)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.closed)

	c = &testCloser{ch: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.closed)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	a, b := errors.New("a"), errors.New("b")
	errs.Add(a, nil, b)
	require.Len(t, errs.Errors, 2)
	err := errs.Aggregate()
	require.Equal(t, "2 errors: a; b", err.Error())
	require.True(t, errors.Is(err, b))
	require.False(t, errors.Is(err, context.Canceled))
}
