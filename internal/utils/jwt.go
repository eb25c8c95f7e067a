package utils

import (
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDFromToken parses a raw JWT and returns the user ID claim. Used by the
// websocket notification stream, where the token arrives as a query parameter
// instead of going through the echo middleware.
func UserIDFromToken(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", errors.New("missing token")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if id, ok := claims["user_id"].(string); ok {
			return id, nil
		}
	}

	return "", errors.New("invalid token claims")
}
