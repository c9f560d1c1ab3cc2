package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitionsToStoppingOnRequest(t *testing.T) {
	p := newProcess()
	go p.supervise()

	require.Equal(t, StateRunning, p.State())

	p.Sender() <- RequestStop

	require.Eventually(t, func() bool {
		return p.State() == StateStopping
	}, time.Second, time.Millisecond)
}

func TestContextCanceledOnStopRequest(t *testing.T) {
	p := newProcess()
	go p.supervise()

	p.Sender() <- RequestStop

	select {
	case <-p.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestExitsWhenStoppingAndNoActiveWorkersRemain(t *testing.T) {
	p := newProcess()

	exited := make(chan int, 1)
	p.exitFunc = func(code int) { exited <- code }

	go p.supervise()

	p.Sender() <- RequestStop

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(time.Second):
		t.Fatal("process did not exit after stopping with no active workers")
	}
}

func TestDoesNotExitWhileWorkersAreActive(t *testing.T) {
	p := newProcess()
	p.IncActiveWorkers()

	exited := make(chan int, 1)
	p.exitFunc = func(code int) { exited <- code }

	go p.supervise()

	p.Sender() <- RequestStop

	select {
	case <-exited:
		t.Fatal("process exited while a worker was still active")
	case <-time.After(250 * time.Millisecond):
	}

	p.DecActiveWorkers()

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(time.Second):
		t.Fatal("process did not exit once the last worker finished")
	}
}
