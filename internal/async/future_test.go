package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Await(t *testing.T) {
	t.Parallel()

	f := Go(func() (int, error) { return 42, nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("future should be resolved")
	}
}

func TestFuture_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Go(func() (string, error) { return "", boom }).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_AwaitCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	f := Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelay(t *testing.T) {
	t.Parallel()

	start := time.Now()
	require.NoError(t, Delay(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.NoError(t, Delay(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Delay(ctx, time.Hour), context.Canceled)
}

func TestFuture_WaitOutlivesCaller(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 7, nil
	})

	time.AfterFunc(20*time.Millisecond, func() { close(release) })
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
