package tokenmanager

import (
	"context"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// Authorizer checks the wrapped token's permission for the request's
// action before the chain proceeds.
type Authorizer struct{}

func (Authorizer) handle(_ context.Context, data api.InputData, token Token) (api.InputData, *core.Error) {
	if !token.CanExecute(data.Request.Header.Action) {
		return data, core.New(core.ErrorKindRequest, "token has no permission to execute action")
	}
	return data, nil
}
