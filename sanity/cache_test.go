package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuerier struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (q *countingQuerier) Fetch(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	q.calls.Add(1)
	if q.delay > 0 {
		time.Sleep(q.delay)
	}
	if q.err != nil {
		return nil, q.err
	}
	return json.RawMessage(`{"n":` + strconv.Itoa(int(q.calls.Load())) + `}`), nil
}

func TestCachedQuerierServesFreshEntries(t *testing.T) {
	next := &countingQuerier{}
	c := NewCachedQuerier(next, time.Minute)
	ctx := context.Background()

	first, err := c.Fetch(ctx, "q", Params{"slug": "a"})
	require.NoError(t, err)
	second, err := c.Fetch(ctx, "q", Params{"slug": "a"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, string(first), string(second))
}

func TestCachedQuerierKeysOnParams(t *testing.T) {
	next := &countingQuerier{}
	c := NewCachedQuerier(next, time.Minute)
	ctx := context.Background()

	_, _ = c.Fetch(ctx, "q", Params{"slug": "a"})
	_, _ = c.Fetch(ctx, "q", Params{"slug": "b"})
	_, _ = c.Fetch(ctx, "other", Params{"slug": "a"})

	assert.Equal(t, int32(3), next.calls.Load())
	assert.Equal(t, 3, c.Len())
}

func TestCachedQuerierExpires(t *testing.T) {
	next := &countingQuerier{}
	c := NewCachedQuerier(next, 30*time.Second)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = c.Fetch(ctx, "q", nil)
	now = now.Add(29 * time.Second)
	_, _ = c.Fetch(ctx, "q", nil)
	assert.Equal(t, int32(1), next.calls.Load())

	now = now.Add(2 * time.Second)
	_, _ = c.Fetch(ctx, "q", nil)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedQuerierInvalidate(t *testing.T) {
	next := &countingQuerier{}
	c := NewCachedQuerier(next, time.Hour)
	ctx := context.Background()

	_, _ = c.Fetch(ctx, "q", nil)
	c.Invalidate()
	assert.Equal(t, 0, c.Len())
	_, _ = c.Fetch(ctx, "q", nil)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedQuerierDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	next := &countingQuerier{err: boom}
	c := NewCachedQuerier(next, time.Hour)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "q", nil)
	assert.ErrorIs(t, err, boom)
	_, err = c.Fetch(ctx, "q", nil)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCachedQuerierCollapsesConcurrentMisses(t *testing.T) {
	next := &countingQuerier{delay: 50 * time.Millisecond}
	c := NewCachedQuerier(next, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(ctx, "q", Params{"slug": "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}

// gatedQuerier blocks until release is closed or its ctx ends.
type gatedQuerier struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (q *gatedQuerier) Fetch(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	q.calls.Add(1)
	q.once.Do(func() { close(q.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.release:
		return json.RawMessage(`{"ok":true}`), nil
	}
}

func TestCachedQuerierCallerCancelDoesNotFailOthers(t *testing.T) {
	next := &gatedQuerier{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCachedQuerier(next, time.Hour)

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx1, "q", nil)
		first <- err
	}()
	<-next.started

	type result struct {
		res json.RawMessage
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := c.Fetch(context.Background(), "q", nil)
		second <- result{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel1()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(next.release)
	select {
	case r := <-second:
		require.NoError(t, r.err)
		assert.JSONEq(t, `{"ok":true}`, string(r.res))
	case <-time.After(time.Second):
		t.Fatal("waiting caller never returned")
	}
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 1, c.Len())
}
