package repositories

import (
	"turnover/internal/database"
)

type Repository struct {
	Room       RoomRepository
	Worker     WorkerRepository
	History    HistoryRepository
	Assignment AssignmentRepository
	Message    MessageRepository
}

func New(db database.DB) Repository {
	return Repository{
		Room:       NewRoomRepository(db.Cache.Dashboard),
		Worker:     NewWorkerRepository(),
		History:    NewHistoryRepository(db.Cache.Ledger),
		Assignment: NewAssignmentRepository(),
		Message:    NewMessageRepository(),
	}
}
