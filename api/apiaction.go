package api

import (
	"context"
	"time"

	"github.com/timour/amqprpc/core"
)

// Result is the one-shot reply shape logic handlers send back to the API
// stage: either an Ok value or a structured Error, never both.
type Result[T any] struct {
	Ok  T
	Err *core.Error
}

// ApiAction is the canonical executor body: send a logic request carrying
// its own one-shot reply channel, await the reply under a timeout, and
// return the Ok value for serialization by the caller.
//
// The send onto logicSender is allowed to block — bounded channels are the
// pipeline's backpressure mechanism, per spec. Only the one-shot reply wait
// is bounded by timeoutAfter.
func ApiAction[L any, OkResult any](
	logicRequest L,
	logicSender chan<- L,
	timeoutAfter time.Duration,
	replyChan <-chan Result[OkResult],
) (any, error) {
	logicSender <- logicRequest

	select {
	case result, ok := <-replyChan:
		if !ok {
			return nil, core.New(core.ErrorKindRequest, "failed to receive logic result: reply channel closed")
		}
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Ok, nil
	case <-time.After(timeoutAfter):
		return nil, core.New(core.ErrorKindAPI, "timed out waiting for logic result")
	}
}

// ApiActionContext is ApiAction's context-aware sibling: it also aborts the
// send/wait if ctx is canceled (e.g. process shutdown), surfacing an
// ApiError instead of blocking forever.
func ApiActionContext[L any, OkResult any](
	ctx context.Context,
	logicRequest L,
	logicSender chan<- L,
	timeoutAfter time.Duration,
	replyChan <-chan Result[OkResult],
) (any, error) {
	select {
	case logicSender <- logicRequest:
	case <-ctx.Done():
		return nil, core.New(core.ErrorKindAPI, "canceled while sending logic request")
	}

	select {
	case result, ok := <-replyChan:
		if !ok {
			return nil, core.New(core.ErrorKindRequest, "failed to receive logic result: reply channel closed")
		}
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Ok, nil
	case <-time.After(timeoutAfter):
		return nil, core.New(core.ErrorKindAPI, "timed out waiting for logic result")
	case <-ctx.Done():
		return nil, core.New(core.ErrorKindAPI, "canceled while waiting for logic result")
	}
}
