package services

import (
	"turnover/internal/database"
)

type Service struct {
	Transaction *TransactionService
	RoomLock    *RoomLockService
	Scheduler   *SchedulerService
}

func New(db database.DB) Service {
	return Service{
		Transaction: NewTransactionService(db),
		RoomLock:    NewRoomLockService(),
		Scheduler:   NewSchedulerService(),
	}
}
