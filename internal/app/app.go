package app

import (
	"context"
	"log"

	"github.com/RoGogDBD/salesitems/internal/auth"
	"github.com/RoGogDBD/salesitems/internal/client"
	"github.com/RoGogDBD/salesitems/internal/config"
	"github.com/RoGogDBD/salesitems/internal/repository"
	"github.com/RoGogDBD/salesitems/internal/telemetry"
	"github.com/RoGogDBD/salesitems/internal/validation"
	"github.com/go-playground/validator/v10"
)

var _ repository.ItemService = (*client.Client)(nil)

// App содержит все зависимости приложения
type App struct {
	Config    *config.Config
	Telemetry *telemetry.Providers
	Session   *auth.Session
	Client    *client.Client
	Items     *repository.Repository
	Validate  *validator.Validate
}

// NewApp создает новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	providers, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry disabled: %v", err)
		providers = &telemetry.Providers{}
	}

	session, err := auth.NewSession(ctx, auth.Config{
		APIKey:      cfg.Auth.APIKey,
		Endpoint:    cfg.Auth.Endpoint,
		SessionFile: cfg.Auth.SessionFile,
	})
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}
	if session.Expired() {
		log.Printf("Stored session for %s expired, signing out", session.Email())
		if err := session.SignOut(); err != nil {
			log.Printf("Warning: failed to clear session: %v", err)
		}
	}

	c := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithTokenSource(session),
		client.WithRequestLogging(cfg.API.LogRequests),
	)

	return &App{
		Config:    cfg,
		Telemetry: providers,
		Session:   session,
		Client:    c,
		Items:     repository.New(c),
		Validate:  validation.New(),
	}, nil
}

// Close освобождает все ресурсы приложения
func (a *App) Close(ctx context.Context) {
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		log.Printf("Warning: telemetry shutdown: %v", err)
	}
}
