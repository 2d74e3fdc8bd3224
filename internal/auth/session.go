// Package auth содержит клиентскую сессию Firebase Authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const unknownLoginError = "Unknown login error"

var (
	// ErrMissingCredentials возвращается для пустых email или пароля до обращения к сервису.
	ErrMissingCredentials = errors.New("email and password must not be empty")
	// ErrSessionExpired возвращается Token, когда срок действия ID-токена истек.
	ErrSessionExpired = errors.New("session expired, sign in again")
	ErrMissingIDToken = errors.New("google id token must not be empty")
)

// User - вошедший пользователь.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Config содержит настройки сессии.
type Config struct {
	APIKey string
	// Endpoint переопределяет базовый адрес relyingparty API.
	Endpoint string
	// SessionFile пуст, если сессию не нужно сохранять между запусками.
	SessionFile string
	HTTPClient  *http.Client
}

// Session хранит текущего пользователя и последнюю ошибку входа.
type Session struct {
	svc   *identitytoolkit.Service
	store *FileStore
	now   func() time.Time

	mu     sync.Mutex
	user   *User
	errMsg string
	subs   []func(*User)
}

// NewSession создает сессию и восстанавливает пользователя из SessionFile.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	opts := []option.ClientOption{option.WithoutAuthentication()}
	if cfg.APIKey != "" {
		opts = []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create identity toolkit service: %w", err)
	}

	s := &Session{svc: svc, now: time.Now}
	if cfg.SessionFile != "" {
		s.store = NewFileStore(cfg.SessionFile)
		user, err := s.store.Load()
		if err != nil {
			log.Printf("[auth] ignoring stored session: %v", err)
		}
		s.user = user
	}
	return s, nil
}

// SignInWithPassword входит по email и паролю.
func (s *Session) SignInWithPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.fail(ErrMissingCredentials)
	}

	res, err := s.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return s.fail(err)
	}
	return s.signedIn(res.LocalId, res.Email, res.IdToken, res.RefreshToken, res.ExpiresIn)
}

// Register создает пользователя и сразу входит под ним.
func (s *Session) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.fail(ErrMissingCredentials)
	}

	res, err := s.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return s.fail(err)
	}
	return s.signedIn(res.LocalId, res.Email, res.IdToken, res.RefreshToken, res.ExpiresIn)
}

// SignInWithGoogle обменивает Google ID-токен на сессию Firebase.
func (s *Session) SignInWithGoogle(ctx context.Context, googleIDToken string) error {
	googleIDToken = strings.TrimSpace(googleIDToken)
	if googleIDToken == "" {
		return s.fail(ErrMissingIDToken)
	}

	postBody := url.Values{
		"id_token":   {googleIDToken},
		"providerId": {"google.com"},
	}
	res, err := s.svc.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody.Encode(),
		RequestUri:        "http://localhost",
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return s.fail(err)
	}
	return s.signedIn(res.LocalId, res.Email, res.IdToken, res.RefreshToken, res.ExpiresIn)
}

// SignOut завершает сессию и удаляет сохраненный файл.
func (s *Session) SignOut() error {
	s.set(nil, "")
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// CurrentUser возвращает копию текущего пользователя или nil.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Email возвращает email текущего пользователя или пустую строку.
func (s *Session) Email() string {
	if u := s.CurrentUser(); u != nil {
		return u.Email
	}
	return ""
}

func (s *Session) IsLoggedOut() bool {
	return s.CurrentUser() == nil
}

// ErrorMessage возвращает текст последней ошибки входа.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Expired сообщает, что пользователь вошел, но срок действия его токена истек.
func (s *Session) Expired() bool {
	u := s.CurrentUser()
	return u != nil && !u.ExpiresAt.IsZero() && !s.now().Before(u.ExpiresAt)
}

// Token возвращает ID-токен для заголовка Authorization.
// Без пользователя возвращается пустая строка.
func (s *Session) Token(context.Context) (string, error) {
	if s.Expired() {
		return "", ErrSessionExpired
	}
	if u := s.CurrentUser(); u != nil {
		return u.IDToken, nil
	}
	return "", nil
}

// Subscribe регистрирует слушателя смены пользователя (nil при выходе).
func (s *Session) Subscribe(fn func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Session) signedIn(uid, email, idToken, refreshToken string, expiresIn int64) error {
	u := &User{
		UID:          uid,
		Email:        email,
		IDToken:      idToken,
		RefreshToken: refreshToken,
	}
	if expiresIn > 0 {
		u.ExpiresAt = s.now().Add(time.Duration(expiresIn) * time.Second)
	}

	if claims, err := parseClaims(idToken); err == nil {
		if u.Email == "" {
			u.Email = claims.Email
		}
		if u.UID == "" {
			u.UID = claims.Subject
		}
		if u.ExpiresAt.IsZero() {
			u.ExpiresAt = claims.ExpiresAt
		}
	} else {
		log.Printf("[auth] id token claims unavailable: %v", err)
	}

	s.set(u, "")
	if s.store != nil {
		if err := s.store.Save(u); err != nil {
			log.Printf("[auth] failed to persist session: %v", err)
		}
	}
	log.Printf("[auth] signed in as %s", u.Email)
	return nil
}

func (s *Session) fail(err error) error {
	msg := loginMessage(err)
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	log.Printf("[auth] sign in failed: %s", msg)
	return fmt.Errorf("sign in: %w", err)
}

func (s *Session) set(u *User, errMsg string) {
	s.mu.Lock()
	s.user = u
	s.errMsg = errMsg
	subs := make([]func(*User), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

func loginMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil || err.Error() == "" {
		return unknownLoginError
	}
	return err.Error()
}
