package historyController

import (
	"context"
	"errors"
	"time"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"
	"turnover/internal/repositories"

	roomsController "turnover/internal/controllers/rooms"

	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 100
)

var (
	ErrValidation = roomsController.ErrValidation
)

// HistoryController exposes the completion log: the immutable cleaning
// records written when rooms are finished.
type HistoryController struct {
	historyRepo repositories.HistoryRepository
	db          database.DB
	Config      config.Config
	log         logger.Logger
}

type HistoryRequest struct {
	WorkerID *uuid.UUID `json:"workerId,omitempty"`
	From     string     `json:"from,omitempty"`
	To       string     `json:"to,omitempty"`
	Limit    int        `json:"limit,omitempty"`
}

type HistoryControllerInterface interface {
	History(ctx context.Context, request *HistoryRequest) ([]*CleaningRecord, error)
	RoomHistory(ctx context.Context, roomID uuid.UUID) ([]*CleaningRecord, error)
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) HistoryControllerInterface {
	return &HistoryController{
		historyRepo: repos.History,
		db:          db,
		Config:      config,
		log:         logger.New("historyController"),
	}
}

func parseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, errors.New("invalid date format, expected YYYY-MM-DD")
	}

	return &t, nil
}

func (c *HistoryController) History(
	ctx context.Context,
	request *HistoryRequest,
) ([]*CleaningRecord, error) {
	log := c.log.Function("History")

	from, err := parseDate(request.From)
	if err != nil {
		return nil, ErrValidation
	}

	to, err := parseDate(request.To)
	if err != nil {
		return nil, ErrValidation
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, ErrValidation
	}

	limit := request.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := c.historyRepo.GetCleaningRecords(ctx, c.db.SQL, repositories.HistoryQuery{
		WorkerID: request.WorkerID,
		From:     from,
		To:       to,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	log.Info("History retrieved", "count", len(records))
	return records, nil
}

func (c *HistoryController) RoomHistory(
	ctx context.Context,
	roomID uuid.UUID,
) ([]*CleaningRecord, error) {
	return c.historyRepo.GetRoomCleaningRecords(ctx, c.db.SQL, roomID)
}
