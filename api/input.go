// Package api implements the API stage: the InputPlugin chain, the action
// registry, and the per-Input dispatch worker loop.
package api

import (
	"context"

	"github.com/timour/amqprpc/request"
)

// Replier is a single-call closure that publishes a JSON reply to whoever
// sent the original request. It is not enforced statically that it is only
// ever invoked once — callers are expected to honor that contract.
type Replier func(ctx context.Context, value any) error

// InputData pairs a parsed Request with the Replier bound to the delivery
// it came from. Ownership of the Replier travels with the InputData: on
// plugin failure it is handed back so the dispatcher can still deliver an
// error reply.
type InputData struct {
	Request request.Request
	Replier Replier
}

// Input is a long-lived source of one InputData per call, polled in a loop
// by the API dispatch worker. Receive is the only call expected to block.
type Input interface {
	Receive(ctx context.Context) (InputData, error)

	// FilterOutPlugins lists plugin ids that this Input opts every action
	// routed through it out of, additive to the action's own list.
	FilterOutPlugins() []string
}

// NewInputData is a small constructor kept for parity with the handful of
// call sites (mostly tests) that used to build the struct positionally.
func NewInputData(req request.Request, replier Replier) InputData {
	return InputData{Request: req, Replier: replier}
}
