package app

import (
	"entgo.io/ent/dialect"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/phrasedrill/internal/infrastructure/config"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/server"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Driver  dialect.Driver
	Phrases usecase.PhraseUsecase
	Server  *server.Server
}

// ProvideSessionUsecase builds the session host with the configured idle TTL.
func ProvideSessionUsecase(cfg *config.Config, phrases usecase.PhraseUsecase) usecase.SessionUsecase {
	ttl := cfg.Server.SessionTTL
	if ttl < 0 {
		ttl = 0
	}
	return usecase.NewSessionUsecase(phrases, ttl)
}
