// Package tokenmanager implements the token_manager InputPlugin: a
// TokenWrapper-backed authorize+authenticate composite.
package tokenmanager

import "github.com/timour/amqprpc/core"

// Token is the capability object a TokenWrapper produces from a validated
// bearer credential.
type Token interface {
	CanExecute(action string) bool
	UserID() string
}

// OrgToken is implemented by tokens that also carry an organization claim.
// Optional: most Token implementations need not satisfy it.
type OrgToken interface {
	Token
	OrgID() (string, bool)
}

// TokenWrapper validates an opaque bearer token string and, on success,
// returns a Token capability object. Wrapping is the verification step.
type TokenWrapper interface {
	Wrap(token string) (Token, *core.Error)
}
