// Package auth issues and verifies the operator access tokens that guard
// the invitation RPCs.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the operator name in addition to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Operator string `json:"operator"`
}

func GenerateToken(operator string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Operator: operator,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetOperatorFromToken validates tokenString and returns the operator it was
// issued to. Expired tokens yield common.ErrAccessTokenExpired, anything else
// that does not verify yields common.ErrInvalidAccessToken.
func GetOperatorFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrAccessTokenExpired
		}
		return "", common.ErrInvalidAccessToken
	}

	if !token.Valid || claims.Operator == "" {
		return "", common.ErrInvalidAccessToken
	}

	return claims.Operator, nil
}
