package sessionController

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/logger"
	. "turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"

	roomsController "turnover/internal/controllers/rooms"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MaxNoteLength = 1000
)

var (
	ErrValidation        = roomsController.ErrValidation
	ErrNotFound          = roomsController.ErrNotFound
	ErrInvalidTransition = roomsController.ErrInvalidTransition
	ErrConflict          = roomsController.ErrConflict
)

// workerBatch tracks a worker's current batch: rooms staged from the
// checkout queue but not yet started, rooms actively being cleaned, and the
// aggregate display clock. The clock starts the first time the active set
// becomes non-empty and stops when it empties again; it is display state
// only, each room keeps its own authoritative session start.
type workerBatch struct {
	selected       map[uuid.UUID]struct{}
	active         map[uuid.UUID]struct{}
	clockStartedAt *time.Time
}

// SessionController drives the cleaning workflow inside a room: batch
// self-selection, ordered activity completion, finishing, and abandonment.
type SessionController struct {
	roomController     roomsController.RoomControllerInterface
	roomRepo           repositories.RoomRepository
	workerRepo         repositories.WorkerRepository
	historyRepo        repositories.HistoryRepository
	messageRepo        repositories.MessageRepository
	transactionService *services.TransactionService
	roomLock           *services.RoomLockService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger

	mu      sync.Mutex
	batches map[uuid.UUID]*workerBatch
}

type ToggleResponse struct {
	Activity *Activity `json:"activity"`
	Toggled  bool      `json:"toggled"`
}

type BatchState struct {
	SelectedRoomIDs []uuid.UUID `json:"selectedRoomIds"`
	ActiveRoomIDs   []uuid.UUID `json:"activeRoomIds"`
	ClockStartedAt  *time.Time  `json:"clockStartedAt,omitempty"`
	ElapsedSeconds  int64       `json:"elapsedSeconds"`
}

type SessionControllerInterface interface {
	SelectRooms(ctx context.Context, workerID uuid.UUID, roomIDs []uuid.UUID) (*BatchState, error)
	CancelSelection(workerID uuid.UUID, roomID uuid.UUID) *BatchState
	Proceed(ctx context.Context, workerID uuid.UUID) (*BatchState, error)
	ToggleActivity(
		ctx context.Context,
		roomID uuid.UUID,
		activityID uuid.UUID,
	) (*ToggleResponse, error)
	Finish(ctx context.Context, roomID uuid.UUID) (*CleaningRecord, error)
	Abandon(ctx context.Context, roomID uuid.UUID, note string) (*Message, error)
	WorkerBatch(workerID uuid.UUID) *BatchState
}

func New(
	roomController roomsController.RoomControllerInterface,
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) SessionControllerInterface {
	return &SessionController{
		roomController:     roomController,
		roomRepo:           repos.Room,
		workerRepo:         repos.Worker,
		historyRepo:        repos.History,
		messageRepo:        repos.Message,
		transactionService: services.Transaction,
		roomLock:           services.RoomLock,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("sessionController"),
		batches:            make(map[uuid.UUID]*workerBatch),
	}
}

// SelectRooms stages checkout rooms into the worker's pending batch. Nothing
// is persisted until Proceed; a staged room can be dropped again with
// CancelSelection at zero cost.
func (c *SessionController) SelectRooms(
	ctx context.Context,
	workerID uuid.UUID,
	roomIDs []uuid.UUID,
) (*BatchState, error) {
	log := c.log.Function("SelectRooms")

	if len(roomIDs) == 0 {
		return nil, ErrValidation
	}

	worker, err := c.workerRepo.GetByID(ctx, c.db.SQL, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !worker.Active {
		return nil, ErrValidation
	}

	for _, roomID := range roomIDs {
		room, err := c.roomController.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if room.Status != RoomStatusCheckout {
			log.Info(
				"Room not selectable",
				"roomNumber", room.Number,
				"status", room.Status,
			)
			return nil, ErrInvalidTransition
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.batch(workerID)
	for _, roomID := range roomIDs {
		batch.selected[roomID] = struct{}{}
	}

	log.Info("Rooms selected", "workerID", workerID, "count", len(roomIDs))
	return c.batchState(batch), nil
}

// CancelSelection drops a staged room from the worker's pending batch with
// zero side effects: no message, no record, no status change. Calling it for
// a room that was never staged is a no-op.
func (c *SessionController) CancelSelection(workerID uuid.UUID, roomID uuid.UUID) *BatchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.batch(workerID)
	delete(batch.selected, roomID)

	return c.batchState(batch)
}

// Proceed atomically moves every staged room into cleaning. All rooms
// transition in one transaction: if any staged room is no longer on the
// checkout queue the whole batch fails and stays staged. The aggregate clock
// starts with the first non-empty active set.
func (c *SessionController) Proceed(
	ctx context.Context,
	workerID uuid.UUID,
) (*BatchState, error) {
	log := c.log.Function("Proceed")

	c.mu.Lock()
	batch := c.batch(workerID)
	roomIDs := make([]uuid.UUID, 0, len(batch.selected))
	for roomID := range batch.selected {
		roomIDs = append(roomIDs, roomID)
	}
	c.mu.Unlock()

	if len(roomIDs) == 0 {
		return nil, ErrValidation
	}

	now := time.Now()
	rooms := make([]*Room, 0, len(roomIDs))

	err := c.roomLock.WithRooms(roomIDs, func() error {
		return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			for _, roomID := range roomIDs {
				room, err := c.roomRepo.GetByID(ctx, tx, roomID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrNotFound
					}
					return err
				}

				if err := c.roomController.StartCleaning(ctx, tx, room, workerID, now); err != nil {
					return err
				}

				rooms = append(rooms, room)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, roomID := range roomIDs {
		delete(batch.selected, roomID)
		batch.active[roomID] = struct{}{}
	}
	if batch.clockStartedAt == nil {
		batch.clockStartedAt = &now
	}
	state := c.batchState(batch)
	c.mu.Unlock()

	for _, room := range rooms {
		if err := c.eventBus.PublishRoomChanged(
			room.ID,
			room.Number,
			room.Status.String(),
			RoomStatusInCleaning.String(),
			&workerID,
		); err != nil {
			log.Warn("failed to publish room change", "roomID", room.ID, "error", err)
		}
	}

	log.Info("Batch proceeded", "workerID", workerID, "rooms", len(roomIDs))
	return state, nil
}

// ToggleActivity flips an activity's completion flag, gated by prefix order
// within the activity's category: the next eligible activity can be checked,
// and any completed activity can be unchecked, but nothing may be checked
// ahead of an incomplete predecessor. A blocked toggle is a no-op, not an
// error.
func (c *SessionController) ToggleActivity(
	ctx context.Context,
	roomID uuid.UUID,
	activityID uuid.UUID,
) (*ToggleResponse, error) {
	log := c.log.Function("ToggleActivity")

	var response *ToggleResponse
	err := c.roomLock.WithRoom(roomID, func() error {
		room, err := c.roomController.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}

		if room.Status != RoomStatusInCleaning {
			return ErrInvalidTransition
		}

		var activity *Activity
		for i := range room.Activities {
			if room.Activities[i].ID == activityID {
				activity = &room.Activities[i]
				break
			}
		}
		if activity == nil {
			return ErrNotFound
		}

		if !toggleAllowed(room.Activities, activity) {
			log.Info(
				"Toggle blocked by incomplete predecessor",
				"roomNumber", room.Number,
				"activity", activity.Label,
			)
			result := *activity
			response = &ToggleResponse{Activity: &result, Toggled: false}
			return nil
		}

		completed := !activity.Completed
		if err := c.roomRepo.SetActivityCompleted(ctx, c.db.SQL, activity.ID, completed); err != nil {
			return err
		}

		activity.Completed = completed
		result := *activity
		response = &ToggleResponse{Activity: &result, Toggled: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// toggleAllowed implements the prefix-order gate. Activities arrive ordered
// by category and position, so the predecessors of a target are the entries
// of its category seen before it.
func toggleAllowed(activities []Activity, target *Activity) bool {
	if target.Completed {
		return true
	}

	for i := range activities {
		activity := &activities[i]
		if activity.Category != target.Category {
			continue
		}
		if activity.ID == target.ID {
			break
		}
		if activity.Position < target.Position && !activity.Completed {
			return false
		}
	}

	return true
}

// Finish closes a cleaning session. Permitted only when every activity in
// the room is complete; writes the immutable cleaning record with a full
// activity snapshot and releases the room.
func (c *SessionController) Finish(
	ctx context.Context,
	roomID uuid.UUID,
) (*CleaningRecord, error) {
	log := c.log.Function("Finish")

	var record *CleaningRecord
	var room *Room
	err := c.roomLock.WithRoom(roomID, func() error {
		var err error
		room, err = c.roomController.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}

		if room.Status != RoomStatusInCleaning {
			return ErrInvalidTransition
		}

		for i := range room.Activities {
			if !room.Activities[i].Completed {
				log.Info(
					"Finish blocked by incomplete activity",
					"roomNumber", room.Number,
					"activity", room.Activities[i].Label,
				)
				return ErrInvalidTransition
			}
		}

		now := time.Now()
		startedAt := now
		if room.SessionStartedAt != nil {
			startedAt = *room.SessionStartedAt
		}

		snapshot, err := snapshotActivities(room.Activities)
		if err != nil {
			return err
		}

		workerID := room.AssignedWorkerID
		if workerID == nil {
			return ErrValidation
		}

		record = &CleaningRecord{
			RoomID:          room.ID,
			RoomNumber:      room.Number,
			RoomType:        room.Type,
			Floor:           room.Floor,
			WorkerID:        *workerID,
			CleaningDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			StartedAt:       startedAt,
			EndedAt:         now,
			DurationSeconds: int64(now.Sub(startedAt).Seconds()),
			Activities:      snapshot,
		}

		return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			if err := c.historyRepo.CreateCleaningRecord(ctx, tx, record); err != nil {
				return err
			}
			return c.roomController.Release(ctx, tx, room)
		})
	})
	if err != nil {
		return nil, err
	}

	c.removeFromBatches(roomID)

	workerID := record.WorkerID
	if err := c.eventBus.PublishRoomChanged(
		room.ID,
		room.Number,
		RoomStatusInCleaning.String(),
		RoomStatusAvailable.String(),
		&workerID,
	); err != nil {
		log.Warn("failed to publish room change", "roomID", room.ID, "error", err)
	}

	log.Info(
		"Room finished",
		"roomNumber", room.Number,
		"workerID", record.WorkerID,
		"durationSeconds", record.DurationSeconds,
	)
	return record, nil
}

// Abandon hands an in-progress room back to the checkout queue and leaves an
// escalation message for the manager. Allowed at any completion progress;
// activity flags are preserved so a later pickup resumes where this one
// stopped.
func (c *SessionController) Abandon(
	ctx context.Context,
	roomID uuid.UUID,
	note string,
) (*Message, error) {
	log := c.log.Function("Abandon")

	if len(note) > MaxNoteLength {
		return nil, ErrValidation
	}

	var message *Message
	var room *Room
	err := c.roomLock.WithRoom(roomID, func() error {
		var err error
		room, err = c.roomController.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}

		if room.Status != RoomStatusInCleaning {
			return ErrInvalidTransition
		}

		workerID := room.AssignedWorkerID
		if workerID == nil {
			return ErrValidation
		}

		now := time.Now()
		var timeSpent int64
		if room.SessionStartedAt != nil {
			timeSpent = int64(now.Sub(*room.SessionStartedAt).Seconds())
		}

		message = &Message{
			RoomNumber:       room.Number,
			WorkerID:         *workerID,
			TimeSpentSeconds: timeSpent,
			Note:             note,
			Timestamp:        now,
		}

		return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			if err := c.messageRepo.Create(ctx, tx, message); err != nil {
				return err
			}
			return c.roomController.ReturnToQueue(ctx, tx, room)
		})
	})
	if err != nil {
		return nil, err
	}

	c.removeFromBatches(roomID)

	if err := c.eventBus.PublishRoomChanged(
		room.ID,
		room.Number,
		RoomStatusInCleaning.String(),
		RoomStatusCheckout.String(),
		&message.WorkerID,
	); err != nil {
		log.Warn("failed to publish room change", "roomID", room.ID, "error", err)
	}
	if err := c.eventBus.PublishMessageAppended(room.Number, message.WorkerID); err != nil {
		log.Warn("failed to publish message event", "roomNumber", room.Number, "error", err)
	}

	log.Info(
		"Room abandoned",
		"roomNumber", room.Number,
		"workerID", message.WorkerID,
		"timeSpentSeconds", message.TimeSpentSeconds,
	)
	return message, nil
}

func (c *SessionController) WorkerBatch(workerID uuid.UUID) *BatchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.batchState(c.batch(workerID))
}

// batch returns the worker's batch, creating it if needed. Callers hold c.mu.
func (c *SessionController) batch(workerID uuid.UUID) *workerBatch {
	batch, exists := c.batches[workerID]
	if !exists {
		batch = &workerBatch{
			selected: make(map[uuid.UUID]struct{}),
			active:   make(map[uuid.UUID]struct{}),
		}
		c.batches[workerID] = batch
	}
	return batch
}

// removeFromBatches drops a room from whichever worker batch holds it and
// stops the batch clock once the active set is empty.
func (c *SessionController) removeFromBatches(roomID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, batch := range c.batches {
		if _, exists := batch.active[roomID]; exists {
			delete(batch.active, roomID)
			if len(batch.active) == 0 {
				batch.clockStartedAt = nil
			}
		}
	}
}

// batchState snapshots a batch for callers. Callers hold c.mu.
func (c *SessionController) batchState(batch *workerBatch) *BatchState {
	state := &BatchState{
		SelectedRoomIDs: sortedIDs(batch.selected),
		ActiveRoomIDs:   sortedIDs(batch.active),
	}

	if batch.clockStartedAt != nil {
		startedAt := *batch.clockStartedAt
		state.ClockStartedAt = &startedAt
		state.ElapsedSeconds = int64(time.Since(startedAt).Seconds())
	}

	return state
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func snapshotActivities(activities []Activity) (datatypes.JSON, error) {
	snapshots := make([]ActivitySnapshot, 0, len(activities))
	for i := range activities {
		snapshots = append(snapshots, ActivitySnapshot{
			Label:     activities[i].Label,
			Category:  activities[i].Category,
			Position:  activities[i].Position,
			Completed: activities[i].Completed,
		})
	}

	data, err := json.Marshal(snapshots)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(data), nil
}
