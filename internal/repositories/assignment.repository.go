package repositories

import (
	"context"
	"turnover/internal/logger"
	. "turnover/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InitiatorCounts splits a worker's assignment ledger by who initiated each
// assignment.
type InitiatorCounts struct {
	Manager int64 `json:"manager"`
	Worker  int64 `json:"worker"`
}

type AssignmentRepository interface {
	// AppendEvent records an assignment. The (worker, room number) pair is
	// unique: appending an event for a room the worker already has in their
	// ledger is a silent no-op.
	AppendEvent(ctx context.Context, tx *gorm.DB, event *AssignmentEvent) error
	GetWorkerEvents(
		ctx context.Context,
		tx *gorm.DB,
		workerID uuid.UUID,
	) ([]*AssignmentEvent, error)
	CountByInitiator(ctx context.Context, tx *gorm.DB, workerID uuid.UUID) (InitiatorCounts, error)
}

type assignmentRepository struct {
	log logger.Logger
}

func NewAssignmentRepository() AssignmentRepository {
	return &assignmentRepository{
		log: logger.New("assignmentRepository"),
	}
}

func (r *assignmentRepository) AppendEvent(
	ctx context.Context,
	tx *gorm.DB,
	event *AssignmentEvent,
) error {
	log := r.log.Function("AppendEvent")

	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
	if err != nil {
		return log.Err(
			"failed to append assignment event",
			err,
			"workerID", event.WorkerID,
			"roomNumber", event.RoomNumber,
		)
	}

	return nil
}

func (r *assignmentRepository) GetWorkerEvents(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
) ([]*AssignmentEvent, error) {
	log := r.log.Function("GetWorkerEvents")

	events, err := gorm.G[*AssignmentEvent](tx).
		Where(AssignmentEvent{WorkerID: workerID}).
		Order("timestamp DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get worker assignment events", err, "workerID", workerID)
	}

	return events, nil
}

func (r *assignmentRepository) CountByInitiator(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
) (InitiatorCounts, error) {
	log := r.log.Function("CountByInitiator")

	var counts InitiatorCounts

	err := tx.WithContext(ctx).
		Model(&AssignmentEvent{}).
		Where("worker_id = ? AND assigned_by = ?", workerID, AssignedByManager).
		Count(&counts.Manager).Error
	if err != nil {
		return counts, log.Err("failed to count manager assignments", err, "workerID", workerID)
	}

	err = tx.WithContext(ctx).
		Model(&AssignmentEvent{}).
		Where("worker_id = ? AND assigned_by = ?", workerID, AssignedByWorker).
		Count(&counts.Worker).Error
	if err != nil {
		return counts, log.Err("failed to count worker assignments", err, "workerID", workerID)
	}

	return counts, nil
}
