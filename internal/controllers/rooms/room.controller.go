package roomsController

import (
	"context"
	"errors"
	"time"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"
	"turnover/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("concurrent conflict")
)

// RoomController is the room registry: it owns the status state machine and
// is the only place a room's status is ever written. Every edge below mirrors
// one row of the workflow transition table; anything else is rejected with
// ErrInvalidTransition and no mutation.
//
//	checkout    -> assigned     negotiation accepted
//	checkout    -> in_cleaning  worker self-selects and proceeds
//	assigned    -> in_cleaning  assigned worker starts
//	assigned    -> assigned     reassignment accepted (worker replaced)
//	in_cleaning -> in_cleaning  reassignment accepted (worker replaced)
//	in_cleaning -> available    all activities complete, finish
//	in_cleaning -> checkout     worker abandons
//
// Maintenance is set and cleared by external systems; no edge here touches it.
type RoomController struct {
	roomRepo       repositories.RoomRepository
	workerRepo     repositories.WorkerRepository
	assignmentRepo repositories.AssignmentRepository
	db             database.DB
	Config         config.Config
	log            logger.Logger
}

type RoomControllerInterface interface {
	RoomsByStatus(ctx context.Context, status RoomStatus) ([]*Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error)
	ActiveWorkerRooms(ctx context.Context, workerID uuid.UUID) ([]*Room, error)

	// Transition edges. Each runs inside the caller's transaction; callers
	// hold the room's lock and publish change events after commit.
	Assign(ctx context.Context, tx *gorm.DB, room *Room, workerID uuid.UUID) error
	Reassign(ctx context.Context, tx *gorm.DB, room *Room, workerID uuid.UUID) error
	StartCleaning(
		ctx context.Context,
		tx *gorm.DB,
		room *Room,
		workerID uuid.UUID,
		startedAt time.Time,
	) error
	Release(ctx context.Context, tx *gorm.DB, room *Room) error
	ReturnToQueue(ctx context.Context, tx *gorm.DB, room *Room) error
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) RoomControllerInterface {
	return &RoomController{
		roomRepo:       repos.Room,
		workerRepo:     repos.Worker,
		assignmentRepo: repos.Assignment,
		db:             db,
		Config:         config,
		log:            logger.New("roomController"),
	}
}

func (c *RoomController) RoomsByStatus(
	ctx context.Context,
	status RoomStatus,
) ([]*Room, error) {
	if !status.Valid() {
		return nil, ErrValidation
	}

	return c.roomRepo.GetByStatus(ctx, c.db.SQL, status)
}

func (c *RoomController) GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error) {
	room, err := c.roomRepo.GetByID(ctx, c.db.SQL, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return room, nil
}

func (c *RoomController) ActiveWorkerRooms(
	ctx context.Context,
	workerID uuid.UUID,
) ([]*Room, error) {
	return c.roomRepo.GetByWorker(ctx, c.db.SQL, workerID)
}

// Assign moves a checkout room onto a worker's board after an accepted
// negotiation. The assignment is credited to the manager in the worker's
// ledger.
func (c *RoomController) Assign(
	ctx context.Context,
	tx *gorm.DB,
	room *Room,
	workerID uuid.UUID,
) error {
	log := c.log.Function("Assign")

	if room.Status != RoomStatusCheckout {
		return ErrInvalidTransition
	}

	err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, RoomStatusCheckout, map[string]any{
		"status":             RoomStatusAssigned,
		"assigned_worker_id": workerID,
	})
	if err != nil {
		return c.mapTransitionError(err)
	}

	if err := c.appendAssignmentEvent(ctx, tx, workerID, room.Number, AssignedByManager); err != nil {
		return err
	}

	log.Info("Room assigned", "roomNumber", room.Number, "workerID", workerID)
	return nil
}

// Reassign replaces the worker on an already assigned or in-progress room.
// Status and session clock are untouched; only the worker changes.
func (c *RoomController) Reassign(
	ctx context.Context,
	tx *gorm.DB,
	room *Room,
	workerID uuid.UUID,
) error {
	log := c.log.Function("Reassign")

	if room.Status != RoomStatusAssigned && room.Status != RoomStatusInCleaning {
		return ErrInvalidTransition
	}

	err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, room.Status, map[string]any{
		"assigned_worker_id": workerID,
	})
	if err != nil {
		return c.mapTransitionError(err)
	}

	if err := c.appendAssignmentEvent(ctx, tx, workerID, room.Number, AssignedByManager); err != nil {
		return err
	}

	log.Info(
		"Room reassigned",
		"roomNumber", room.Number,
		"workerID", workerID,
		"status", room.Status,
	)
	return nil
}

// StartCleaning opens the cleaning session. Two edges arrive here: a worker
// starting a room the manager assigned to them, and a worker self-selecting
// straight from the checkout queue (which also credits the assignment to the
// worker in their ledger).
func (c *RoomController) StartCleaning(
	ctx context.Context,
	tx *gorm.DB,
	room *Room,
	workerID uuid.UUID,
	startedAt time.Time,
) error {
	log := c.log.Function("StartCleaning")

	switch room.Status {
	case RoomStatusCheckout:
		updates := map[string]any{
			"status": RoomStatusInCleaning,
		}
		if room.AssignedWorkerID == nil {
			updates["assigned_worker_id"] = workerID
		}
		if room.SessionStartedAt == nil {
			updates["session_started_at"] = startedAt
		}

		err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, RoomStatusCheckout, updates)
		if err != nil {
			return c.mapTransitionError(err)
		}

		if err := c.appendAssignmentEvent(ctx, tx, workerID, room.Number, AssignedByWorker); err != nil {
			return err
		}

	case RoomStatusAssigned:
		if room.AssignedWorkerID == nil || *room.AssignedWorkerID != workerID {
			return ErrValidation
		}

		updates := map[string]any{
			"status": RoomStatusInCleaning,
		}
		if room.SessionStartedAt == nil {
			updates["session_started_at"] = startedAt
		}

		err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, RoomStatusAssigned, updates)
		if err != nil {
			return c.mapTransitionError(err)
		}

	default:
		return ErrInvalidTransition
	}

	log.Info("Cleaning started", "roomNumber", room.Number, "workerID", workerID)
	return nil
}

// Release frees a fully cleaned room back to the available pool. The caller
// is responsible for writing the cleaning record first; this only drives the
// status edge and clears the session fields.
func (c *RoomController) Release(ctx context.Context, tx *gorm.DB, room *Room) error {
	log := c.log.Function("Release")

	if room.Status != RoomStatusInCleaning {
		return ErrInvalidTransition
	}

	err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, RoomStatusInCleaning, map[string]any{
		"status":             RoomStatusAvailable,
		"assigned_worker_id": nil,
		"session_started_at": nil,
	})
	if err != nil {
		return c.mapTransitionError(err)
	}

	log.Info("Room released", "roomNumber", room.Number)
	return nil
}

// ReturnToQueue puts an abandoned room back on the checkout queue. Activity
// completion flags are deliberately left as they are so the next worker
// resumes from the prior progress.
func (c *RoomController) ReturnToQueue(ctx context.Context, tx *gorm.DB, room *Room) error {
	log := c.log.Function("ReturnToQueue")

	if room.Status != RoomStatusInCleaning {
		return ErrInvalidTransition
	}

	err := c.roomRepo.TransitionStatus(ctx, tx, room.ID, RoomStatusInCleaning, map[string]any{
		"status":             RoomStatusCheckout,
		"assigned_worker_id": nil,
		"session_started_at": nil,
	})
	if err != nil {
		return c.mapTransitionError(err)
	}

	log.Info("Room returned to queue", "roomNumber", room.Number)
	return nil
}

func (c *RoomController) appendAssignmentEvent(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
	roomNumber string,
	assignedBy AssignmentInitiator,
) error {
	return c.assignmentRepo.AppendEvent(ctx, tx, &AssignmentEvent{
		WorkerID:   workerID,
		RoomNumber: roomNumber,
		AssignedBy: assignedBy,
		Timestamp:  time.Now(),
	})
}

func (c *RoomController) mapTransitionError(err error) error {
	if errors.Is(err, repositories.ErrStaleRoom) {
		return ErrConflict
	}
	return err
}
