// Package logic implements the logic stage: a Dispatch that receives
// LogicRequest values from the API stage, routes them by Kind to an
// Executor, and forwards derived work to the storage stage.
package logic

import (
	"context"
	"time"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// Request is implemented by every logic-stage request variant. Kind is the
// dispatch discriminant, Go's stand-in for the original's
// mem::discriminant(&request).
type Request interface {
	Kind() string
}

// Executor is the body of one logic request variant: it may forward work
// to the storage stage and is responsible for eventually completing any
// api.Result reply channel it was handed inside req.
type Executor[L Request, S any] func(ctx context.Context, req L, storageSender chan<- S) error

// TimeoutSendStorageRequest sends storageRequest on sender, replying to
// apiReplier with a LogicError on timeout or send failure before returning
// the error to the caller. apiReplier is returned unchanged so the caller
// can still use it to deliver the eventual storage response.
func TimeoutSendStorageRequest[S any, OkResult any](
	ctx context.Context,
	timeoutAfter time.Duration,
	storageRequest S,
	sender chan<- S,
	apiReplier chan<- api.Result[OkResult],
) (chan<- api.Result[OkResult], *core.Error) {
	select {
	case sender <- storageRequest:
		return apiReplier, nil
	case <-time.After(timeoutAfter):
		err := core.New(core.ErrorKindLogic, "timed out sending storage request")
		replyError(apiReplier, err)
		return apiReplier, err
	case <-ctx.Done():
		err := core.New(core.ErrorKindLogic, "canceled while sending storage request")
		replyError(apiReplier, err)
		return apiReplier, err
	}
}

// TimeoutReceiveStorageResponse awaits a storage response, replying to
// apiReplier with a LogicError on timeout or storage failure before
// returning the error to the caller.
func TimeoutReceiveStorageResponse[StorageOk any, OkResult any](
	ctx context.Context,
	timeoutAfter time.Duration,
	storageReceiver <-chan api.Result[StorageOk],
	apiReplier chan<- api.Result[OkResult],
) (chan<- api.Result[OkResult], StorageOk, *core.Error) {
	var zero StorageOk

	select {
	case result, ok := <-storageReceiver:
		if !ok {
			err := core.New(core.ErrorKindLogic, "storage response channel closed")
			replyError(apiReplier, err)
			return apiReplier, zero, err
		}
		if result.Err != nil {
			err := core.Newf(core.ErrorKindLogic, "storage failed to handle request: %s", result.Err.Message)
			replyError(apiReplier, err)
			return apiReplier, zero, err
		}
		return apiReplier, result.Ok, nil
	case <-time.After(timeoutAfter):
		err := core.New(core.ErrorKindLogic, "timed out receiving response from storage")
		replyError(apiReplier, err)
		return apiReplier, zero, err
	case <-ctx.Done():
		err := core.New(core.ErrorKindLogic, "canceled while receiving response from storage")
		replyError(apiReplier, err)
		return apiReplier, zero, err
	}
}

func replyError[OkResult any](apiReplier chan<- api.Result[OkResult], err *core.Error) {
	select {
	case apiReplier <- api.Result[OkResult]{Err: err}:
	default:
	}
}
