package api

import (
	"context"

	"github.com/timour/amqprpc/core"
)

// Plugin is one link in the API-stage middleware chain. Plugins run
// strictly in registration order; the id is used by actions/inputs to opt a
// given call out of a specific plugin.
//
// On failure the InputData is returned alongside the error so the
// dispatcher can still deliver a reply through its Replier.
type Plugin interface {
	ID() string
	Handle(ctx context.Context, data InputData) (InputData, *core.Error)
}
