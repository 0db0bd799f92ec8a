package repositories

import (
	"context"
	"errors"
	"turnover/internal/logger"
	. "turnover/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkerRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, workerID uuid.UUID) (*Worker, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*Worker, error)
	GetActive(ctx context.Context, tx *gorm.DB) ([]*Worker, error)
}

type workerRepository struct {
	log logger.Logger
}

func NewWorkerRepository() WorkerRepository {
	return &workerRepository{
		log: logger.New("workerRepository"),
	}
}

func (r *workerRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
) (*Worker, error) {
	log := r.log.Function("GetByID")

	var worker Worker
	if err := tx.WithContext(ctx).First(&worker, "id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get worker", err, "workerID", workerID)
	}

	return &worker, nil
}

func (r *workerRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*Worker, error) {
	log := r.log.Function("GetAll")

	workers, err := gorm.G[*Worker](tx).
		Order("last_name ASC, first_name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get workers", err)
	}

	return workers, nil
}

func (r *workerRepository) GetActive(ctx context.Context, tx *gorm.DB) ([]*Worker, error) {
	log := r.log.Function("GetActive")

	workers, err := gorm.G[*Worker](tx).
		Where(Worker{Active: true}).
		Order("last_name ASC, first_name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get active workers", err)
	}

	return workers, nil
}
