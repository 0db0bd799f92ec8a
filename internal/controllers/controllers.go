package controllers

import (
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/repositories"
	"turnover/internal/services"

	assignmentController "turnover/internal/controllers/assignment"
	historyController "turnover/internal/controllers/history"
	messagesController "turnover/internal/controllers/messages"
	roomsController "turnover/internal/controllers/rooms"
	sessionController "turnover/internal/controllers/session"
	workersController "turnover/internal/controllers/workers"
)

type Controllers struct {
	Room       roomsController.RoomControllerInterface
	Assignment assignmentController.AssignmentControllerInterface
	Session    sessionController.SessionControllerInterface
	Worker     workersController.WorkerControllerInterface
	History    historyController.HistoryControllerInterface
	Message    messagesController.MessageControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	roomController := roomsController.New(repos, config, db)

	return Controllers{
		Room:       roomController,
		Assignment: assignmentController.New(roomController, repos, services, eventBus, config, db),
		Session:    sessionController.New(roomController, repos, services, eventBus, config, db),
		Worker:     workersController.New(repos, config, db),
		History:    historyController.New(repos, config, db),
		Message:    messagesController.New(repos, config, db),
	}
}
