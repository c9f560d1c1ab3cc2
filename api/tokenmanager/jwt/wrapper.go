package jwt

import (
	"context"
	"crypto/rsa"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/timour/amqprpc/api/tokenmanager"
	"github.com/timour/amqprpc/core"
)

// Wrapper is a tokenmanager.TokenWrapper backed by a remote JWKS endpoint.
// Only RSA-family algorithms are accepted.
type Wrapper struct {
	config OpenIDConnectConfig
	cache  *jwk.Cache
}

// NewWrapper starts a background-refreshing JWKS cache for config.JWKSURI.
func NewWrapper(ctx context.Context, config OpenIDConnectConfig) (*Wrapper, *core.Error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(config.JWKSURI); err != nil {
		return nil, core.Newf(core.ErrorKindInitialization, "failed to register jwks endpoint: %s", err)
	}
	if _, err := cache.Refresh(ctx, config.JWKSURI); err != nil {
		return nil, core.Newf(core.ErrorKindInitialization, "failed to fetch jwks: %s", err)
	}

	return &Wrapper{config: config, cache: cache}, nil
}

func (w *Wrapper) Wrap(token string) (tokenmanager.Token, *core.Error) {
	set, err := w.cache.Get(context.Background(), w.config.JWKSURI)
	if err != nil {
		return nil, core.Newf(core.ErrorKindAPI, "failed to obtain jwks: %s", err)
	}

	keyFunc := w.keyFunc(set)

	claims := jwtv5.MapClaims{}
	parser := jwtv5.NewParser(jwtv5.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
	parsedToken, err := parser.ParseWithClaims(token, claims, keyFunc)
	if err != nil {
		return nil, core.Newf(core.ErrorKindRequest, "invalid token detected: %s", err)
	}
	if !parsedToken.Valid {
		return nil, core.New(core.ErrorKindRequest, "invalid token detected")
	}

	if coreErr := validateIssuer(claims, w.config.Issuers); coreErr != nil {
		return nil, coreErr
	}
	if coreErr := validateAudience(claims, w.config.Audience); coreErr != nil {
		return nil, coreErr
	}

	return NewJsonWebToken(claims)
}

func (w *Wrapper) keyFunc(set jwk.Set) jwtv5.Keyfunc {
	return func(token *jwtv5.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token header is missing 'kid'")
		}

		key, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("failed to find jwk for kid '%s'", kid)
		}

		var pubKey rsa.PublicKey
		if err := key.Raw(&pubKey); err != nil {
			return nil, fmt.Errorf("expected an RSA key for kid '%s': %w", kid, err)
		}

		return &pubKey, nil
	}
}

func validateIssuer(claims jwtv5.MapClaims, allowed []string) *core.Error {
	if len(allowed) == 0 {
		return nil
	}
	issuer, err := claims.GetIssuer()
	if err != nil {
		return core.Newf(core.ErrorKindRequest, "failed to read token issuer: %s", err)
	}
	for _, candidate := range allowed {
		if candidate == issuer {
			return nil
		}
	}
	return core.Newf(core.ErrorKindRequest, "unexpected token issuer '%s'", issuer)
}

func validateAudience(claims jwtv5.MapClaims, allowed []string) *core.Error {
	if len(allowed) == 0 {
		return nil
	}
	audiences, err := claims.GetAudience()
	if err != nil {
		return core.Newf(core.ErrorKindRequest, "failed to read token audience: %s", err)
	}
	for _, candidate := range allowed {
		for _, aud := range audiences {
			if candidate == aud {
				return nil
			}
		}
	}
	return core.New(core.ErrorKindRequest, "token audience does not match any configured audience")
}
