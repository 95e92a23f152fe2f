package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_AwaitFromManyGoroutines(t *testing.T) {
	res := newResult[int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := res.Await(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}

	res.resolve(7, nil)
	wg.Wait()
}

func TestResult_AwaitHonorsContext(t *testing.T) {
	res := newResult[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := res.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// A later Await still sees the value once resolved.
	res.resolve(3, nil)
	v, err := res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestResult_Done(t *testing.T) {
	res := newResult[string]()

	select {
	case <-res.Done():
		t.Fatal("done before resolve")
	default:
	}

	res.resolve("ok", nil)
	select {
	case <-res.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after resolve")
	}
}
