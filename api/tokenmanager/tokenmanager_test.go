package tokenmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
	"github.com/timour/amqprpc/request"
)

type fakeToken struct {
	userID      string
	permissions map[string]struct{}
}

func (t fakeToken) CanExecute(action string) bool {
	_, ok := t.permissions[action]
	return ok
}

func (t fakeToken) UserID() string { return t.userID }

type fakeWrapper struct {
	token Token
	err   *core.Error
}

func (w fakeWrapper) Wrap(string) (Token, *core.Error) {
	return w.token, w.err
}

func newInputData(action, token string) api.InputData {
	header := request.NewHeader(action, token)
	return api.NewInputData(request.New(header, nil), func(context.Context, any) error { return nil })
}

func TestTokenManagerErrorsWhenTokenWrapperFails(t *testing.T) {
	wrapperErr := core.New(core.ErrorKindRequest, "malformed token")
	tm := New(fakeWrapper{err: wrapperErr})

	_, err := tm.Handle(context.Background(), newInputData("dummy:action", "bad-token"))

	require.NotNil(t, err)
	assert.Equal(t, wrapperErr, err)
}

func TestTokenManagerErrorsWhenAuthorizationFails(t *testing.T) {
	token := fakeToken{userID: "user-1", permissions: map[string]struct{}{}}
	tm := New(fakeWrapper{token: token})

	_, err := tm.Handle(context.Background(), newInputData("dummy:action", "good-token"))

	require.NotNil(t, err)
	assert.Equal(t, core.ErrorKindRequest, err.Kind)
}

func TestTokenManagerEmbedsUserIDWhenAuthorized(t *testing.T) {
	token := fakeToken{userID: "user-1", permissions: map[string]struct{}{"dummy:action": {}}}
	tm := New(fakeWrapper{token: token})

	data, err := tm.Handle(context.Background(), newInputData("dummy:action", "good-token"))

	require.Nil(t, err)
	userID, ok := request.ExtractUserID(data.Request)
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)
}

func TestAuthorizerFailsWhenLackingPermissionForAction(t *testing.T) {
	token := fakeToken{userID: "user-1", permissions: map[string]struct{}{"other:action": {}}}

	_, err := Authorizer{}.handle(context.Background(), newInputData("dummy:action", "tok"), token)

	require.NotNil(t, err)
	assert.Equal(t, core.ErrorKindRequest, err.Kind)
}

func TestAuthorizerSucceedsWhenCanExecuteAction(t *testing.T) {
	token := fakeToken{userID: "user-1", permissions: map[string]struct{}{"dummy:action": {}}}

	_, err := Authorizer{}.handle(context.Background(), newInputData("dummy:action", "tok"), token)

	assert.Nil(t, err)
}

func TestAuthenticatorEmbedsUserIDIntoHeader(t *testing.T) {
	token := fakeToken{userID: "user-42"}

	data, err := Authenticator{}.handle(context.Background(), newInputData("dummy:action", "tok"), token)

	require.Nil(t, err)
	userID, ok := request.ExtractUserID(data.Request)
	require.True(t, ok)
	assert.Equal(t, "user-42", userID)
}

func TestAuthenticatorNeverFailsOnEmptyUserID(t *testing.T) {
	token := fakeToken{userID: ""}

	data, err := Authenticator{}.handle(context.Background(), newInputData("dummy:action", "tok"), token)

	require.Nil(t, err)
	userID, ok := request.ExtractUserID(data.Request)
	require.True(t, ok)
	assert.Empty(t, userID)
}
