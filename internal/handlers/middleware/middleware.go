package middleware

import (
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/logger"
	"turnover/internal/repositories"
)

type Middleware struct {
	DB         database.DB
	workerRepo repositories.WorkerRepository
	Config     config.Config
	log        logger.Logger
	eventBus   *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	repos repositories.Repository,
) Middleware {
	log := logger.New("middleware")

	return Middleware{
		DB:         db,
		workerRepo: repos.Worker,
		Config:     config,
		log:        log,
		eventBus:   eventBus,
	}
}
