package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/herbtrade/herbtrade-backend-go/config"
)

// Token lifetimes. Session tokens last a day; reset-link tokens are short.
const (
	SessionTokenTTL = 24 * time.Hour
	ResetTokenTTL   = 15 * time.Minute
)

// Claims carry the principal's id, role and the collection the record
// lives in ("users" or "sellers"), so verification can resolve the right
// document without guessing.
type Claims struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Collection string `json:"collection"`
	jwt.StandardClaims
}

// signingKey pulls the secret from the loaded configuration. main refuses
// to start when JWT_SECRET is empty, so a nil key only occurs in tests
// that skip loading.
func signingKey() []byte {
	c := config.Get()
	if c == nil {
		return nil
	}
	return []byte(c.JWTSecret)
}

func GenerateJWT(id, role, collection string, ttl time.Duration) (string, error) {
	claims := &Claims{
		ID:         id,
		Role:       role,
		Collection: collection,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey())
}

func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingKey(), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
