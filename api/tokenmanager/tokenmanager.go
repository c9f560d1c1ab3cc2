package tokenmanager

import (
	"context"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// PluginID is the registered id of the composite token_manager plugin, used
// by actions/inputs that want to opt out of it via filter_out_plugins.
const PluginID = "token_manager"

// TokenManager is the api.Plugin that wraps a bearer token, authorizes it
// against the request's action, and authenticates the caller into the
// header's extra fields, in that fixed order.
type TokenManager struct {
	wrapper    TokenWrapper
	subPlugins []subPlugin
}

// New builds a TokenManager backed by the given TokenWrapper. The
// authorize-then-authenticate order is fixed and not configurable.
func New(wrapper TokenWrapper) *TokenManager {
	return &TokenManager{
		wrapper:    wrapper,
		subPlugins: []subPlugin{Authorizer{}, Authenticator{}},
	}
}

func (*TokenManager) ID() string {
	return PluginID
}

func (t *TokenManager) Handle(ctx context.Context, data api.InputData) (api.InputData, *core.Error) {
	token, err := t.wrapper.Wrap(data.Request.Header.Token)
	if err != nil {
		return data, err
	}

	for _, sub := range t.subPlugins {
		data, err = sub.handle(ctx, data, token)
		if err != nil {
			return data, err
		}
	}

	return data, nil
}
