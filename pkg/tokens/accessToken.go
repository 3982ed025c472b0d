package tokens

import (
	"github.com/golang-jwt/jwt/v5"
)

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	return parseAccess(tokenStr, accessSecret)
}

// AccessClaimsIgnoringExpiry checks the signature but accepts expired tokens.
// Used by refresh and logout, where the access token has usually run out.
func AccessClaimsIgnoringExpiry(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	return parseAccess(tokenStr, accessSecret, jwt.WithoutClaimsValidation())
}

func parseAccess(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*AccessClaims, error) {
	var claims AccessClaims
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return &claims, nil
}
