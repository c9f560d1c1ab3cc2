package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testStorageRequest struct {
	kind  string
	value string
}

func (r testStorageRequest) Kind() string { return r.kind }

func TestDispatchRoutesByKind(t *testing.T) {
	receiver := make(chan testStorageRequest, 1)
	handled := make(chan string, 1)

	executors := map[string]Executor[testStorageRequest]{
		"dummy": func(_ context.Context, req testStorageRequest) error {
			handled <- req.value
			return nil
		},
	}

	dispatch := NewDispatch(receiver, executors, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatch.Run(ctx)

	receiver <- testStorageRequest{kind: "dummy", value: "ok"}

	select {
	case got := <-handled:
		assert.Equal(t, "ok", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for storage executor to run")
	}
}

func TestDispatchDrainsBufferedRequestsBeforeStoppingOnCancellation(t *testing.T) {
	receiver := make(chan testStorageRequest, 4)
	var mu sync.Mutex
	var handled []string

	executors := map[string]Executor[testStorageRequest]{
		"dummy": func(_ context.Context, req testStorageRequest) error {
			mu.Lock()
			handled = append(handled, req.value)
			mu.Unlock()
			return nil
		},
	}

	receiver <- testStorageRequest{kind: "dummy", value: "a"}
	receiver <- testStorageRequest{kind: "dummy", value: "b"}
	receiver <- testStorageRequest{kind: "dummy", value: "c"}

	dispatch := NewDispatch(receiver, executors, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		dispatch.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch did not drain and stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, handled)
}
