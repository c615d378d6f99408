package parallel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin2BothSucceed(t *testing.T) {
	a, b, err := Join2(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (string, error) { return "two", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, "two", b)
}

func TestJoin2ReturnsFirstFailureWithoutWaiting(t *testing.T) {
	errRemote := errors.New("remote down")
	cancelled := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, _, err := Join2(context.Background(),
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			close(cancelled)
			// Keep running after cancellation; Join2 must not wait for us.
			<-release
			return 0, ctx.Err()
		},
		func(context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 0, errRemote
		},
	)
	require.ErrorIs(t, err, errRemote)
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling collector was not cancelled")
	}
}

func TestJoin2PanicBecomesError(t *testing.T) {
	_, _, err := Join2(context.Background(),
		func(context.Context) (int, error) { panic("bad collector") },
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad collector", pe.Value)
}

func TestJoin2ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Join2(ctx,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	)
	require.ErrorIs(t, err, context.Canceled)
}

func TestJoin2BothFailReportsOneOfThem(t *testing.T) {
	errA := errors.New("crunchbase down")
	errB := errors.New("github down")
	for i := 0; i < 200; i++ {
		_, _, err := Join2(context.Background(),
			func(context.Context) (int, error) { return 0, errA },
			func(context.Context) (int, error) { return 0, errB },
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errA) || errors.Is(err, errB), "unexpected error %v", err)
	}
}
