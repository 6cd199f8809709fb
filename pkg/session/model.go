package session

import (
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// Fixed keys under which the session is persisted in a Store.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Session holds the credentials identifying an authenticated user.
type Session struct {
	AccessToken  string // Short-lived credential sent with each authenticated request
	RefreshToken string // Longer-lived credential exchanged for a new access token
}

// jwsAlgs lists the signature algorithms accepted when peeking into an access token.
var jwsAlgs = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}

// AccessTokenExpiry returns the exp claim of the access token. The token is
// not verified; the result is only a scheduling hint. It returns false for
// opaque tokens and tokens without an exp claim.
func (s Session) AccessTokenExpiry() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}

	token, err := jwt.ParseSigned(s.AccessToken, jwsAlgs)
	if err != nil {
		return time.Time{}, false
	}

	var claims jwt.Claims
	if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}, false
	}

	if claims.Expiry == nil {
		return time.Time{}, false
	}

	return claims.Expiry.Time(), true
}
