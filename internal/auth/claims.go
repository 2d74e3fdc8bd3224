package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	Email     string
	Subject   string
	ExpiresAt time.Time
}

// parseClaims читает claims ID-токена без проверки подписи.
// Подпись проверяет сервер; клиенту нужны только email и срок действия.
func parseClaims(idToken string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return tokenClaims{}, fmt.Errorf("parse id token: %w", err)
	}

	var out tokenClaims
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
