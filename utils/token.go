package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim required by the admin routes.
const AdminRole = "admin"

// GenerateAdminToken signs a token carrying the admin role, valid for ttl.
func GenerateAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAdminToken parses tokenString and checks it carries the admin role.
func ValidateAdminToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return "", errors.New("token does not carry the admin role")
	}
	subject, _ := claims.GetSubject()
	return subject, nil
}
