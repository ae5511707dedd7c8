//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/phrasedrill/internal/adapter/connectrpc"
	"github.com/eslsoft/phrasedrill/internal/adapter/repository"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/config"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/database"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/server"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewDriver,
)

var repositorySet = wire.NewSet(
	repository.NewPhraseRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewPhraseUsecase,
	usecase.NewAnswerUsecase,
	ProvideSessionUsecase,
)

var serviceSet = wire.NewSet(
	connectrpc.NewAnswerServiceServer,
	connectrpc.NewPhraseServiceServer,
	connectrpc.NewSessionServiceServer,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
