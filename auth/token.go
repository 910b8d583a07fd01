package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtKey signs session tokens. A production deployment would load this
// from the environment or a secret manager.
var jwtKey = []byte("chat_shell_session_signing_key_2026")

// SessionClaims is the payload stored inside a session JWT.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed HS256 JWT for the signed-in user.
func GenerateToken(userID, username string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-shell",
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
}

// ValidateToken checks signature and expiration and returns the claims.
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
