package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// TokenVerifier проверяет Firebase ID-токен.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Caller - пользователь, от имени которого выполняется запрос.
type Caller struct {
	UID   string
	Email string
}

type callerKey struct{}

var errMissingBearer = errors.New("authorization header required")

// NewFirebaseVerifier создает клиент Firebase Auth для проверки ID-токенов.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}

// RequireCaller проверяет Bearer-токен и кладет Caller в контекст запроса.
func RequireCaller(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := verifyRequest(r, v)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
		})
	}
}

// CallerFrom возвращает Caller из контекста.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

func verifyRequest(r *http.Request, v TokenVerifier) (Caller, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return Caller{}, errMissingBearer
	}

	verified, err := v.VerifyIDToken(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return Caller{}, fmt.Errorf("invalid or expired token: %w", err)
	}

	caller := Caller{UID: verified.UID}
	if email, ok := verified.Claims["email"].(string); ok {
		caller.Email = email
	}
	return caller, nil
}
