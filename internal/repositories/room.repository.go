package repositories

import (
	"context"
	"errors"
	"time"
	"turnover/internal/database"
	"turnover/internal/logger"
	. "turnover/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ROOMS_STATUS_CACHE_PREFIX = "rooms_status"
	WORKER_ROOMS_CACHE_PREFIX = "worker_rooms"
	ROOMS_CACHE_EXPIRY        = 5 * time.Minute
)

// ErrStaleRoom is returned when a guarded status update matched no row: the
// room's status changed under us between the read and the write.
var ErrStaleRoom = errors.New("room status changed concurrently")

type RoomRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (*Room, error)
	GetByStatus(ctx context.Context, tx *gorm.DB, status RoomStatus) ([]*Room, error)
	GetByWorker(ctx context.Context, tx *gorm.DB, workerID uuid.UUID) ([]*Room, error)
	TransitionStatus(
		ctx context.Context,
		tx *gorm.DB,
		roomID uuid.UUID,
		from RoomStatus,
		updates map[string]any,
	) error
	GetActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (*Activity, error)
	GetActivities(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*Activity, error)
	SetActivityCompleted(
		ctx context.Context,
		tx *gorm.DB,
		activityID uuid.UUID,
		completed bool,
	) error

	ClearRoomCaches(ctx context.Context)
}

type roomRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewRoomRepository(cache database.CacheClient) RoomRepository {
	return &roomRepository{
		cache: cache,
		log:   logger.New("roomRepository"),
	}
}

func (r *roomRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	roomID uuid.UUID,
) (*Room, error) {
	log := r.log.Function("GetByID")

	var room Room
	if err := tx.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("category ASC, position ASC")
		}).
		First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get room", err, "roomID", roomID)
	}

	return &room, nil
}

// GetByStatus serves the dashboard status boards. Results are cached per
// status and invalidated on every transition, so repeated polling does not
// hit postgres.
func (r *roomRepository) GetByStatus(
	ctx context.Context,
	tx *gorm.DB,
	status RoomStatus,
) ([]*Room, error) {
	log := r.log.Function("GetByStatus")

	var cached []*Room
	found, err := database.NewCacheBuilder(r.cache, status.String()).
		WithContext(ctx).
		WithHash(ROOMS_STATUS_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get rooms from cache", "status", status, "error", err)
	}

	if found {
		return cached, nil
	}

	rooms, err := gorm.G[*Room](tx).
		Preload("Activities", func(db gorm.PreloadBuilder) error {
			db.Order("category ASC, position ASC")
			return nil
		}).
		Where(Room{Status: status}).
		Order("floor ASC, number ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get rooms by status", err, "status", status)
	}

	err = database.NewCacheBuilder(r.cache, status.String()).
		WithContext(ctx).
		WithHash(ROOMS_STATUS_CACHE_PREFIX).
		WithStruct(rooms).
		WithTTL(ROOMS_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to set rooms in cache", "status", status, "error", err)
	}

	return rooms, nil
}

func (r *roomRepository) GetByWorker(
	ctx context.Context,
	tx *gorm.DB,
	workerID uuid.UUID,
) ([]*Room, error) {
	log := r.log.Function("GetByWorker")

	rooms, err := gorm.G[*Room](tx).
		Preload("Activities", func(db gorm.PreloadBuilder) error {
			db.Order("category ASC, position ASC")
			return nil
		}).
		Where("assigned_worker_id = ?", workerID).
		Order("floor ASC, number ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get rooms by worker", err, "workerID", workerID)
	}

	return rooms, nil
}

// TransitionStatus applies a guarded status update: the write only lands if
// the room is still in the expected source status. A zero-row update means
// another operation won the race.
func (r *roomRepository) TransitionStatus(
	ctx context.Context,
	tx *gorm.DB,
	roomID uuid.UUID,
	from RoomStatus,
	updates map[string]any,
) error {
	log := r.log.Function("TransitionStatus")

	result := tx.WithContext(ctx).
		Model(&Room{}).
		Where("id = ? AND status = ?", roomID, from).
		Updates(updates)
	if result.Error != nil {
		return log.Err("failed to transition room status", result.Error, "roomID", roomID, "from", from)
	}

	if result.RowsAffected == 0 {
		return ErrStaleRoom
	}

	r.ClearRoomCaches(ctx)

	return nil
}

func (r *roomRepository) GetActivity(
	ctx context.Context,
	tx *gorm.DB,
	activityID uuid.UUID,
) (*Activity, error) {
	log := r.log.Function("GetActivity")

	var activity Activity
	if err := tx.WithContext(ctx).First(&activity, "id = ?", activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get activity", err, "activityID", activityID)
	}

	return &activity, nil
}

func (r *roomRepository) GetActivities(
	ctx context.Context,
	tx *gorm.DB,
	roomID uuid.UUID,
) ([]*Activity, error) {
	log := r.log.Function("GetActivities")

	activities, err := gorm.G[*Activity](tx).
		Where(Activity{RoomID: roomID}).
		Order("category ASC, position ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get activities", err, "roomID", roomID)
	}

	return activities, nil
}

func (r *roomRepository) SetActivityCompleted(
	ctx context.Context,
	tx *gorm.DB,
	activityID uuid.UUID,
	completed bool,
) error {
	log := r.log.Function("SetActivityCompleted")

	result := tx.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", activityID).
		Update("completed", completed)
	if result.Error != nil {
		return log.Err("failed to update activity", result.Error, "activityID", activityID)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.ClearRoomCaches(ctx)

	return nil
}

func (r *roomRepository) ClearRoomCaches(ctx context.Context) {
	log := r.log.Function("ClearRoomCaches")

	for _, prefix := range []string{ROOMS_STATUS_CACHE_PREFIX, WORKER_ROOMS_CACHE_PREFIX} {
		err := database.NewCacheBuilder(r.cache, prefix).
			WithContext(ctx).
			DeletePattern()
		if err != nil {
			log.Warn("failed to clear room cache", "prefix", prefix, "error", err)
		}
	}
}
