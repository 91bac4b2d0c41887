package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter_Immediate(t *testing.T) {
	f := After(0, 42, nil)

	select {
	case <-f.Done():
	default:
		t.Fatal("zero delay must resolve immediately")
	}

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAfter_Delayed(t *testing.T) {
	start := time.Now()
	f := After(20*time.Millisecond, "ok", nil)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestAwait_ContextCancelled(t *testing.T) {
	f := After(time.Hour, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFailed(t *testing.T) {
	boom := errors.New("boom")
	_, err := Failed[int](boom).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}
