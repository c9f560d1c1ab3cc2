package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/logic"
	"github.com/timour/amqprpc/request"
	"github.com/timour/amqprpc/storage"
)

type testLogicRequest struct {
	value   string
	replyTo chan api.Result[string]
}

func (testLogicRequest) Kind() string { return "echo" }

type testStorageRequest struct{ value string }

func (testStorageRequest) Kind() string { return "noop" }

type fakeInput struct {
	deliveries chan api.InputData
}

func (f *fakeInput) Receive(ctx context.Context) (api.InputData, error) {
	select {
	case d := <-f.deliveries:
		return d, nil
	case <-ctx.Done():
		return api.InputData{}, ctx.Err()
	}
}

func (f *fakeInput) FilterOutPlugins() []string { return nil }

func TestMicroserviceRoutesRequestThroughAllThreeStages(t *testing.T) {
	input := &fakeInput{deliveries: make(chan api.InputData, 1)}

	actions := api.NewRegistry(api.NewAction[testLogicRequest]("echo", func(req request.Request, logicSender chan<- testLogicRequest) (any, error) {
		replyTo := make(chan api.Result[string], 1)
		logicSender <- testLogicRequest{value: "hi", replyTo: replyTo}
		result := <-replyTo
		return result.Ok, nil
	}))

	logicExecutors := map[string]logic.Executor[testLogicRequest, testStorageRequest]{
		"echo": func(ctx context.Context, req testLogicRequest, storageSender chan<- testStorageRequest) error {
			storageSender <- testStorageRequest{value: req.value}
			req.replyTo <- api.Result[string]{Ok: req.value}
			return nil
		},
	}

	received := make(chan string, 1)
	storageExecutors := map[string]storage.Executor[testStorageRequest]{
		"noop": func(ctx context.Context, req testStorageRequest) error {
			received <- req.value
			return nil
		},
	}

	ms := New[testLogicRequest, testStorageRequest](
		[]api.Input{input},
		actions,
		nil,
		logicExecutors,
		storageExecutors,
		nil,
	)

	ms.Run()

	replies := make(chan any, 1)
	input.deliveries <- api.InputData{
		Request: request.New(request.NewHeader("echo", ""), []byte(`{}`)),
		Replier: func(ctx context.Context, value any) error {
			replies <- value
			return nil
		},
	}

	select {
	case v := <-replies:
		reply, ok := v.(request.Reply)
		require.True(t, ok)
		assert.Equal(t, "hi", reply.Ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}

	select {
	case v := <-received:
		assert.Equal(t, "hi", v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for storage side effect")
	}
}
