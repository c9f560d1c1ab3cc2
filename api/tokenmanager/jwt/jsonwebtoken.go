package jwt

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/timour/amqprpc/core"
)

const (
	permissionsClaim             = "permissions"
	organizationPermissionsClaim = "org_permissions"
	userIDClaim                  = "sub"
)

// JsonWebToken is the tokenmanager.Token produced by a successful Wrapper.Wrap
// call: permissions are the union of the "permissions" and "org_permissions"
// claims, and the user id is the "sub" claim.
type JsonWebToken struct {
	claims      jwtv5.MapClaims
	permissions map[string]struct{}
	userID      string
}

// NewJsonWebToken builds a JsonWebToken from already-verified claims.
func NewJsonWebToken(claims jwtv5.MapClaims) (*JsonWebToken, *core.Error) {
	permissions, err := permissionsFromClaim(claims, permissionsClaim)
	if err != nil {
		return nil, err
	}

	orgPermissions, err := permissionsFromClaim(claims, organizationPermissionsClaim)
	if err != nil {
		return nil, err
	}
	for p := range orgPermissions {
		permissions[p] = struct{}{}
	}

	rawUserID, ok := claims[userIDClaim]
	if !ok {
		return nil, core.New(core.ErrorKindAPI, "token is missing 'sub' claim")
	}
	userID, ok := rawUserID.(string)
	if !ok {
		return nil, core.New(core.ErrorKindAPI, "failed to read 'sub' claim as a string")
	}

	return &JsonWebToken{claims: claims, permissions: permissions, userID: userID}, nil
}

func (t *JsonWebToken) CanExecute(action string) bool {
	_, ok := t.permissions[action]
	return ok
}

func (t *JsonWebToken) UserID() string {
	return t.userID
}

// OrgID returns the "org_id" claim, if present.
func (t *JsonWebToken) OrgID() (string, bool) {
	raw, ok := t.claims["org_id"]
	if !ok {
		return "", false
	}
	orgID, ok := raw.(string)
	return orgID, ok
}

func permissionsFromClaim(claims jwtv5.MapClaims, claim string) (map[string]struct{}, *core.Error) {
	result := make(map[string]struct{})

	raw, ok := claims[claim]
	if !ok {
		return nil, core.Newf(core.ErrorKindAPI, "'%s' claim is missing", claim)
	}

	values, ok := raw.([]any)
	if !ok {
		return nil, core.Newf(core.ErrorKindAPI, "'%s' claim is not a strings array", claim)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, core.Newf(core.ErrorKindAPI, "'%s' claim contains a non-string entry", claim)
		}
		result[s] = struct{}{}
	}

	return result, nil
}
