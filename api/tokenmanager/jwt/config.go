// Package jwt implements a JWT-backed tokenmanager.TokenWrapper: JWKS-backed
// RSA signature verification plus exp/aud/iss validation, modeled on the
// Auth0-style OpenID Connect configuration of the original implementation.
package jwt

// OpenIDConnectConfig names where to fetch signing keys from and what
// issuer/audience combinations are acceptable.
type OpenIDConnectConfig struct {
	JWKSURI  string
	Issuers  []string
	Audience []string
}

// NewOpenIDConnectConfig builds an OpenIDConnectConfig.
func NewOpenIDConnectConfig(jwksURI string, issuers, audience []string) OpenIDConnectConfig {
	return OpenIDConnectConfig{JWKSURI: jwksURI, Issuers: issuers, Audience: audience}
}
