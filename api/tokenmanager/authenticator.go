package tokenmanager

import (
	"context"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// UserIDKey is the header extra key the Authenticator writes.
const UserIDKey = "user_id"

// Authenticator injects the token's user id into the request header.
// An empty user id is written through silently rather than treated as a
// failure (see SPEC_FULL.md's Open Question 4 resolution).
type Authenticator struct{}

func (Authenticator) handle(_ context.Context, data api.InputData, token Token) (api.InputData, *core.Error) {
	data.Request.Header.AddExtra(UserIDKey, token.UserID())
	return data, nil
}
