package repositories

import (
	"context"
	"time"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WORKER_HISTORY_CACHE_PREFIX = "worker_history"
	HISTORY_CACHE_EXPIRY        = 24 * time.Hour
)

// HistoryQuery narrows the completion log. A nil WorkerID or date bound
// leaves that dimension unfiltered.
type HistoryQuery struct {
	WorkerID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Limit    int
}

type HistoryRepository interface {
	CreateCleaningRecord(ctx context.Context, tx *gorm.DB, record *CleaningRecord) error
	GetCleaningRecords(
		ctx context.Context,
		tx *gorm.DB,
		query HistoryQuery,
	) ([]*CleaningRecord, error)
	GetRoomCleaningRecords(
		ctx context.Context,
		tx *gorm.DB,
		roomID uuid.UUID,
	) ([]*CleaningRecord, error)
	TotalCleaningSeconds(ctx context.Context, tx *gorm.DB, workerID uuid.UUID) (int64, error)

	ClearWorkerHistoryCache(ctx context.Context, workerID uuid.UUID)
}

type historyRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewHistoryRepository(cache database.CacheClient) HistoryRepository {
	return &historyRepository{
		cache: cache,
		log:   logger.New("historyRepository"),
	}
}

func (r *historyRepository) CreateCleaningRecord(
	ctx context.Context,
	tx *gorm.DB,
	record *CleaningRecord,
) error {
	log := r.log.Function("CreateCleaningRecord")

	err := gorm.G[CleaningRecord](tx).Create(ctx, record)
	if err != nil {
		return log.Err(
			"failed to create cleaning record",
			err,
			"roomNumber", record.RoomNumber,
			"workerID", record.WorkerID,
		)
	}

	r.ClearWorkerHistoryCache(ctx, record.WorkerID)

	return nil
}

func (r *historyRepository) GetCleaningRecords(
	ctx context.Context,
	tx *gorm.DB,
	query HistoryQuery,
) ([]*CleaningRecord, error) {
	log := r.log.Function("GetCleaningRecords")

	// Only the unfiltered per-worker list is cached; date-bounded queries go
	// straight to postgres.
	cacheable := query.WorkerID != nil && query.From == nil && query.To == nil

	if cacheable {
		var cached []*CleaningRecord
		found, err := database.NewCacheBuilder(r.cache, *query.WorkerID).
			WithContext(ctx).
			WithHash(WORKER_HISTORY_CACHE_PREFIX).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get history from cache", "workerID", query.WorkerID, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	db := tx.WithContext(ctx).Preload("Worker")

	if query.WorkerID != nil {
		db = db.Where("worker_id = ?", *query.WorkerID)
	}
	if query.From != nil {
		db = db.Where("cleaning_date >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("cleaning_date <= ?", *query.To)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var records []*CleaningRecord
	if err := db.Order("ended_at DESC").Find(&records).Error; err != nil {
		return nil, log.Err("failed to get cleaning records", err)
	}

	if cacheable {
		err := database.NewCacheBuilder(r.cache, *query.WorkerID).
			WithContext(ctx).
			WithHash(WORKER_HISTORY_CACHE_PREFIX).
			WithStruct(records).
			WithTTL(HISTORY_CACHE_EXPIRY).
			Set()
		if err != nil {
			log.Warn("failed to set history in cache", "workerID", query.WorkerID, "error", err)
		}
	}

	return records, nil
}

func (r *historyRepository) GetRoomCleaningRecords(
	ctx context.Context,
	tx *gorm.DB,
	roomID uuid.UUID,
) ([]*CleaningRecord, error) {
	log := r.log.Function("GetRoomCleaningRecords")

	records, err := gorm.G[*CleaningRecord](tx).
		Preload("Worker", nil).
		Where(CleaningRecord{RoomID: roomID}).
		Order("ended_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get room cleaning records", err, "roomID", roomID)
	}

	return records, nil
}

func (r *historyRepository) TotalCleaningSeconds(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
) (int64, error) {
	log := r.log.Function("TotalCleaningSeconds")

	var total *int64
	err := tx.WithContext(ctx).
		Model(&CleaningRecord{}).
		Where("worker_id = ?", workerID).
		Select("SUM(duration_seconds)").
		Scan(&total).Error
	if err != nil {
		return 0, log.Err("failed to sum cleaning durations", err, "workerID", workerID)
	}

	if total == nil {
		return 0, nil
	}

	return *total, nil
}

func (r *historyRepository) ClearWorkerHistoryCache(ctx context.Context, workerID uuid.UUID) {
	log := r.log.Function("ClearWorkerHistoryCache")

	err := database.NewCacheBuilder(r.cache, workerID).
		WithContext(ctx).
		WithHash(WORKER_HISTORY_CACHE_PREFIX).
		Delete()
	if err != nil {
		log.Warn("failed to clear worker history cache", "workerID", workerID, "error", err)
	}
}
