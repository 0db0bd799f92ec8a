package repositories

import (
	"context"
	"turnover/internal/logger"
	. "turnover/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *Message) error
	GetAll(ctx context.Context, tx *gorm.DB, limit int) ([]*Message, error)
}

type messageRepository struct {
	log logger.Logger
}

func NewMessageRepository() MessageRepository {
	return &messageRepository{
		log: logger.New("messageRepository"),
	}
}

func (r *messageRepository) Create(ctx context.Context, tx *gorm.DB, message *Message) error {
	log := r.log.Function("Create")

	err := gorm.G[Message](tx).Create(ctx, message)
	if err != nil {
		return log.Err(
			"failed to create message",
			err,
			"roomNumber", message.RoomNumber,
			"workerID", message.WorkerID,
		)
	}

	return nil
}

func (r *messageRepository) GetAll(
	ctx context.Context,
	tx *gorm.DB,
	limit int,
) ([]*Message, error) {
	log := r.log.Function("GetAll")

	query := gorm.G[*Message](tx).
		Preload("Worker", nil).
		Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	messages, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get messages", err)
	}

	return messages, nil
}
