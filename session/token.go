package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the bearer token's exp claim (seconds since
// epoch) is at or before now. The claim is read without signature
// verification - verifying the token is the backend's job; the client only
// needs to know whether presenting it is still worthwhile. Tokens that cannot
// be parsed count as expired.
func TokenExpired(rawToken string, now time.Time) bool {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return true
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return true
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return true
	}
	return now.Unix() >= int64(exp)
}
