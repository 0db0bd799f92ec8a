package messagesController

import (
	"context"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"
	"turnover/internal/repositories"
)

const (
	DefaultMessageLimit = 200
)

// MessageController reads the escalation channel. Messages are written only
// by the abandonment path and are never updated or resolved here; the
// manager reacts by proposing the abandoned room to another worker.
type MessageController struct {
	messageRepo repositories.MessageRepository
	db          database.DB
	Config      config.Config
	log         logger.Logger
}

type MessageControllerInterface interface {
	Messages(ctx context.Context, limit int) ([]*Message, error)
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) MessageControllerInterface {
	return &MessageController{
		messageRepo: repos.Message,
		db:          db,
		Config:      config,
		log:         logger.New("messageController"),
	}
}

func (c *MessageController) Messages(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	return c.messageRepo.GetAll(ctx, c.db.SQL, limit)
}
