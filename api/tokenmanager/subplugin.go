package tokenmanager

import (
	"context"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// subPlugin is a token_manager internal step: unlike a top-level api.Plugin
// it receives the already-wrapped Token alongside the InputData.
type subPlugin interface {
	handle(ctx context.Context, data api.InputData, token Token) (api.InputData, *core.Error)
}
