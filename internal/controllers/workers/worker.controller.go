package workersController

import (
	"context"
	"errors"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"
	"turnover/internal/repositories"

	roomsController "turnover/internal/controllers/rooms"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = roomsController.ErrNotFound
)

type WorkerController struct {
	workerRepo     repositories.WorkerRepository
	roomRepo       repositories.RoomRepository
	historyRepo    repositories.HistoryRepository
	assignmentRepo repositories.AssignmentRepository
	db             database.DB
	Config         config.Config
	log            logger.Logger
}

// WorkerMetrics aggregates a worker's ledgers for the manager dashboard.
// ActiveRooms joins the assignment ledger against the live room registry;
// the initiator counts come from the deduplicated assignment log, so a room
// cleaned repeatedly by the same worker counts once.
type WorkerMetrics struct {
	Worker             *Worker            `json:"worker"`
	ManagerAssignments int64              `json:"managerAssignments"`
	WorkerAssignments  int64              `json:"workerAssignments"`
	RoomsCleaned       int64              `json:"roomsCleaned"`
	HoursCleaned       decimal.Decimal    `json:"hoursCleaned"`
	ActiveRooms        []*Room            `json:"activeRooms"`
	AssignmentLedger   []*AssignmentEvent `json:"assignmentLedger"`
}

type WorkerControllerInterface interface {
	GetWorker(ctx context.Context, workerID uuid.UUID) (*Worker, error)
	GetWorkers(ctx context.Context) ([]*Worker, error)
	ActiveRooms(ctx context.Context, workerID uuid.UUID) ([]*Room, error)
	Metrics(ctx context.Context, workerID uuid.UUID) (*WorkerMetrics, error)
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) WorkerControllerInterface {
	return &WorkerController{
		workerRepo:     repos.Worker,
		roomRepo:       repos.Room,
		historyRepo:    repos.History,
		assignmentRepo: repos.Assignment,
		db:             db,
		Config:         config,
		log:            logger.New("workerController"),
	}
}

func (c *WorkerController) GetWorker(ctx context.Context, workerID uuid.UUID) (*Worker, error) {
	worker, err := c.workerRepo.GetByID(ctx, c.db.SQL, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return worker, nil
}

func (c *WorkerController) GetWorkers(ctx context.Context) ([]*Worker, error) {
	return c.workerRepo.GetAll(ctx, c.db.SQL)
}

func (c *WorkerController) ActiveRooms(
	ctx context.Context,
	workerID uuid.UUID,
) ([]*Room, error) {
	return c.roomRepo.GetByWorker(ctx, c.db.SQL, workerID)
}

func (c *WorkerController) Metrics(
	ctx context.Context,
	workerID uuid.UUID,
) (*WorkerMetrics, error) {
	log := c.log.Function("Metrics")

	worker, err := c.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	counts, err := c.assignmentRepo.CountByInitiator(ctx, c.db.SQL, workerID)
	if err != nil {
		return nil, err
	}

	ledger, err := c.assignmentRepo.GetWorkerEvents(ctx, c.db.SQL, workerID)
	if err != nil {
		return nil, err
	}

	activeRooms, err := c.roomRepo.GetByWorker(ctx, c.db.SQL, workerID)
	if err != nil {
		return nil, err
	}

	records, err := c.historyRepo.GetCleaningRecords(ctx, c.db.SQL, repositories.HistoryQuery{
		WorkerID: &workerID,
	})
	if err != nil {
		return nil, err
	}

	totalSeconds, err := c.historyRepo.TotalCleaningSeconds(ctx, c.db.SQL, workerID)
	if err != nil {
		return nil, err
	}

	hoursCleaned := decimal.NewFromInt(totalSeconds).
		Div(decimal.NewFromInt(3600)).
		Round(2)

	log.Info(
		"Worker metrics computed",
		"workerID", workerID,
		"roomsCleaned", len(records),
		"activeRooms", len(activeRooms),
	)

	return &WorkerMetrics{
		Worker:             worker,
		ManagerAssignments: counts.Manager,
		WorkerAssignments:  counts.Worker,
		RoomsCleaned:       int64(len(records)),
		HoursCleaned:       hoursCleaned,
		ActiveRooms:        activeRooms,
		AssignmentLedger:   ledger,
	}, nil
}
