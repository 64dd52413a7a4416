package service

import (
	"github.com/dom/personal-services-api/internal/config"
	"github.com/dom/personal-services-api/internal/repository"
)

type Services struct {
	Auth     *AuthService
	Sessions *SessionService
	Settings *SettingsService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) (*Services, error) {
	auth, err := NewAuthService(repos.User, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth: auth,
		Sessions: NewSessionService(repos.Session, SessionConfig{
			Secret:     cfg.SessionSecret,
			CookieName: cfg.SessionCookieName,
			MaxAge:     cfg.SessionMaxAge,
			Secure:     cfg.IsProduction(),
		}),
		Settings: NewSettingsService(repos.Setting),
	}, nil
}
