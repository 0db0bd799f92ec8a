package sessionController

import (
	"context"
	"testing"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/events"
	. "turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"

	roomsController "turnover/internal/controllers/rooms"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (database.DB, SessionControllerInterface) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	cfg := config.Config{}
	repos := repositories.New(db)
	svc := services.New(db)
	eventBus := events.New(nil, cfg)

	roomController := roomsController.New(repos, cfg, db)
	controller := New(roomController, repos, svc, eventBus, cfg, db)

	return db, controller
}

func createTestWorker(t *testing.T, db database.DB, active bool) *Worker {
	t.Helper()

	worker := &Worker{
		FirstName: "Test",
		LastName:  "Worker",
		Email:     uuid.NewString() + "@example.com",
		Active:    active,
	}
	require.NoError(t, db.SQL.Create(worker).Error)
	return worker
}

func createTestRoom(t *testing.T, db database.DB, number string, status RoomStatus) *Room {
	t.Helper()

	room := &Room{
		Number: number,
		Type:   "standard",
		Floor:  1,
		Status: status,
		Activities: []Activity{
			{Label: "Strip beds", Category: "bedroom", Position: 0},
			{Label: "Make beds", Category: "bedroom", Position: 1},
			{Label: "Scrub shower", Category: "bathroom", Position: 0},
		},
	}
	require.NoError(t, db.SQL.Create(room).Error)
	return room
}

func reloadRoom(t *testing.T, db database.DB, roomID uuid.UUID) *Room {
	t.Helper()

	var room Room
	require.NoError(t, db.SQL.Preload("Activities", func(db *gorm.DB) *gorm.DB {
		return db.Order("category ASC, position ASC")
	}).First(&room, "id = ?", roomID).Error)
	return &room
}

func TestSelectRooms(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "101", RoomStatusCheckout)

	batch, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{room.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{room.ID}, batch.SelectedRoomIDs)
	assert.Empty(t, batch.ActiveRoomIDs)
	assert.Nil(t, batch.ClockStartedAt)

	// Selection is staging only, the room stays on the checkout queue.
	assert.Equal(t, RoomStatusCheckout, reloadRoom(t, db, room.ID).Status)
}

func TestSelectRooms_RejectsNonCheckoutRoom(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "102", RoomStatusAvailable)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{room.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectRooms_RejectsInactiveWorker(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, false)
	room := createTestRoom(t, db, "103", RoomStatusCheckout)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{room.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelSelection_Idempotent(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "104", RoomStatusCheckout)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{room.ID})
	require.NoError(t, err)

	batch := controller.CancelSelection(worker.ID, room.ID)
	assert.Empty(t, batch.SelectedRoomIDs)

	// Cancelling again, or cancelling a room never staged, is a silent no-op.
	batch = controller.CancelSelection(worker.ID, room.ID)
	assert.Empty(t, batch.SelectedRoomIDs)
	batch = controller.CancelSelection(worker.ID, uuid.New())
	assert.Empty(t, batch.SelectedRoomIDs)
}

func TestProceed_MovesBatchIntoCleaning(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	roomA := createTestRoom(t, db, "105", RoomStatusCheckout)
	roomB := createTestRoom(t, db, "106", RoomStatusCheckout)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{roomA.ID, roomB.ID})
	require.NoError(t, err)

	batch, err := controller.Proceed(ctx, worker.ID)
	require.NoError(t, err)
	assert.Empty(t, batch.SelectedRoomIDs)
	assert.Len(t, batch.ActiveRoomIDs, 2)
	require.NotNil(t, batch.ClockStartedAt)

	for _, roomID := range []uuid.UUID{roomA.ID, roomB.ID} {
		room := reloadRoom(t, db, roomID)
		assert.Equal(t, RoomStatusInCleaning, room.Status)
		require.NotNil(t, room.AssignedWorkerID)
		assert.Equal(t, worker.ID, *room.AssignedWorkerID)
		assert.NotNil(t, room.SessionStartedAt)
	}

	// Self-selection credits the assignment to the worker.
	var ledger []AssignmentEvent
	require.NoError(t, db.SQL.Find(&ledger, "worker_id = ?", worker.ID).Error)
	assert.Len(t, ledger, 2)
	for _, event := range ledger {
		assert.Equal(t, AssignedByWorker, event.AssignedBy)
	}
}

func TestProceed_AllOrNothing(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	other := createTestWorker(t, db, true)
	roomA := createTestRoom(t, db, "107", RoomStatusCheckout)
	roomB := createTestRoom(t, db, "108", RoomStatusCheckout)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{roomA.ID, roomB.ID})
	require.NoError(t, err)

	// Another flow grabs roomB before this worker proceeds.
	require.NoError(t, db.SQL.Model(&Room{}).
		Where("id = ?", roomB.ID).
		Updates(map[string]any{"status": RoomStatusAssigned, "assigned_worker_id": other.ID}).Error)

	_, err = controller.Proceed(ctx, worker.ID)
	require.Error(t, err)

	// The whole batch fails: roomA did not transition and everything stays
	// staged for a retry.
	assert.Equal(t, RoomStatusCheckout, reloadRoom(t, db, roomA.ID).Status)
	batch := controller.WorkerBatch(worker.ID)
	assert.Len(t, batch.SelectedRoomIDs, 2)
	assert.Empty(t, batch.ActiveRoomIDs)
}

func TestProceed_EmptyBatch(t *testing.T) {
	db, controller := setupTest(t)

	worker := createTestWorker(t, db, true)

	_, err := controller.Proceed(context.Background(), worker.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func proceedWithRoom(
	t *testing.T,
	controller SessionControllerInterface,
	workerID uuid.UUID,
	roomID uuid.UUID,
) {
	t.Helper()

	ctx := context.Background()
	_, err := controller.SelectRooms(ctx, workerID, []uuid.UUID{roomID})
	require.NoError(t, err)
	_, err = controller.Proceed(ctx, workerID)
	require.NoError(t, err)
}

func TestToggleActivity_PrefixOrder(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "109", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)

	loaded := reloadRoom(t, db, room.ID)
	byLabel := make(map[string]Activity)
	for _, activity := range loaded.Activities {
		byLabel[activity.Label] = activity
	}

	// Second bedroom task is blocked while the first is incomplete. No
	// error, no mutation.
	response, err := controller.ToggleActivity(ctx, room.ID, byLabel["Make beds"].ID)
	require.NoError(t, err)
	assert.False(t, response.Toggled)
	assert.False(t, response.Activity.Completed)

	// The first task of each category is always eligible.
	response, err = controller.ToggleActivity(ctx, room.ID, byLabel["Strip beds"].ID)
	require.NoError(t, err)
	assert.True(t, response.Toggled)
	assert.True(t, response.Activity.Completed)

	// Now the second bedroom task opens up.
	response, err = controller.ToggleActivity(ctx, room.ID, byLabel["Make beds"].ID)
	require.NoError(t, err)
	assert.True(t, response.Toggled)

	// Categories gate independently: the bathroom task was never blocked by
	// bedroom progress.
	response, err = controller.ToggleActivity(ctx, room.ID, byLabel["Scrub shower"].ID)
	require.NoError(t, err)
	assert.True(t, response.Toggled)

	// Unchecking is always allowed, even with completed successors.
	response, err = controller.ToggleActivity(ctx, room.ID, byLabel["Strip beds"].ID)
	require.NoError(t, err)
	assert.True(t, response.Toggled)
	assert.False(t, response.Activity.Completed)
}

func TestToggleActivity_RequiresCleaningInProgress(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	room := createTestRoom(t, db, "110", RoomStatusCheckout)
	loaded := reloadRoom(t, db, room.ID)

	_, err := controller.ToggleActivity(ctx, room.ID, loaded.Activities[0].ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestToggleActivity_UnknownActivity(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "111", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)

	_, err := controller.ToggleActivity(ctx, room.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func completeAllActivities(t *testing.T, db database.DB, roomID uuid.UUID) {
	t.Helper()

	require.NoError(t, db.SQL.Model(&Activity{}).
		Where("room_id = ?", roomID).
		Update("completed", true).Error)
}

func TestFinish_RequiresAllActivitiesComplete(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "112", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)

	_, err := controller.Finish(ctx, room.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, RoomStatusInCleaning, reloadRoom(t, db, room.ID).Status)
}

func TestFinish_WritesRecordAndReleasesRoom(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "113", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)
	completeAllActivities(t, db, room.ID)

	record, err := controller.Finish(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Number, record.RoomNumber)
	assert.Equal(t, worker.ID, record.WorkerID)
	assert.GreaterOrEqual(t, record.DurationSeconds, int64(0))
	assert.NotEmpty(t, record.Activities)

	released := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusAvailable, released.Status)
	assert.Nil(t, released.AssignedWorkerID)
	assert.Nil(t, released.SessionStartedAt)

	// The record is in the ledger and the room left the worker's batch.
	var count int64
	require.NoError(t, db.SQL.Model(&CleaningRecord{}).
		Where("room_id = ?", room.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	batch := controller.WorkerBatch(worker.ID)
	assert.Empty(t, batch.ActiveRoomIDs)
	assert.Nil(t, batch.ClockStartedAt)
}

func TestAbandon_ReturnsRoomAndLeavesMessage(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "114", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)

	loaded := reloadRoom(t, db, room.ID)
	_, err := controller.ToggleActivity(ctx, room.ID, loaded.Activities[0].ID)
	require.NoError(t, err)

	message, err := controller.Abandon(ctx, room.ID, "guest requested a late checkout")
	require.NoError(t, err)
	assert.Equal(t, room.Number, message.RoomNumber)
	assert.Equal(t, worker.ID, message.WorkerID)
	assert.Equal(t, "guest requested a late checkout", message.Note)
	assert.GreaterOrEqual(t, message.TimeSpentSeconds, int64(0))

	returned := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusCheckout, returned.Status)
	assert.Nil(t, returned.AssignedWorkerID)
	assert.Nil(t, returned.SessionStartedAt)

	// Completion flags survive so the next worker resumes mid-checklist.
	completed := 0
	for _, activity := range returned.Activities {
		if activity.Completed {
			completed++
		}
	}
	assert.Equal(t, 1, completed)

	// No cleaning record for an abandoned session.
	var count int64
	require.NoError(t, db.SQL.Model(&CleaningRecord{}).
		Where("room_id = ?", room.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAbandon_NoteTooLong(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "115", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)

	note := make([]byte, MaxNoteLength+1)
	for i := range note {
		note[i] = 'a'
	}

	_, err := controller.Abandon(ctx, room.ID, string(note))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, RoomStatusInCleaning, reloadRoom(t, db, room.ID).Status)
}

func TestAbandon_RequiresCleaningInProgress(t *testing.T) {
	db, controller := setupTest(t)

	room := createTestRoom(t, db, "116", RoomStatusCheckout)

	_, err := controller.Abandon(context.Background(), room.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBatchClock_SpansRooms(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	roomA := createTestRoom(t, db, "117", RoomStatusCheckout)
	roomB := createTestRoom(t, db, "118", RoomStatusCheckout)

	_, err := controller.SelectRooms(ctx, worker.ID, []uuid.UUID{roomA.ID, roomB.ID})
	require.NoError(t, err)
	first, err := controller.Proceed(ctx, worker.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ClockStartedAt)
	clockStart := *first.ClockStartedAt

	// Finishing one room keeps the aggregate clock running.
	completeAllActivities(t, db, roomA.ID)
	_, err = controller.Finish(ctx, roomA.ID)
	require.NoError(t, err)

	batch := controller.WorkerBatch(worker.ID)
	require.NotNil(t, batch.ClockStartedAt)
	assert.True(t, batch.ClockStartedAt.Equal(clockStart))

	// Emptying the active set stops it.
	completeAllActivities(t, db, roomB.ID)
	_, err = controller.Finish(ctx, roomB.ID)
	require.NoError(t, err)

	batch = controller.WorkerBatch(worker.ID)
	assert.Nil(t, batch.ClockStartedAt)
	assert.Equal(t, int64(0), batch.ElapsedSeconds)

	// A later selection starts a fresh clock rather than resuming.
	roomC := createTestRoom(t, db, "119", RoomStatusCheckout)
	_, err = controller.SelectRooms(ctx, worker.ID, []uuid.UUID{roomC.ID})
	require.NoError(t, err)
	later, err := controller.Proceed(ctx, worker.ID)
	require.NoError(t, err)
	require.NotNil(t, later.ClockStartedAt)
	assert.False(t, later.ClockStartedAt.Before(clockStart))
}

func TestToggleAllowed(t *testing.T) {
	first := Activity{Category: "bedroom", Position: 0}
	second := Activity{Category: "bedroom", Position: 1}
	other := Activity{Category: "bathroom", Position: 0}

	tests := []struct {
		name       string
		activities []Activity
		target     int
		allowed    bool
	}{
		{
			name:       "first of category always allowed",
			activities: []Activity{first, second},
			target:     0,
			allowed:    true,
		},
		{
			name:       "blocked by incomplete predecessor",
			activities: []Activity{first, second},
			target:     1,
			allowed:    false,
		},
		{
			name: "allowed once predecessor complete",
			activities: []Activity{
				{Category: "bedroom", Position: 0, Completed: true},
				second,
			},
			target:  1,
			allowed: true,
		},
		{
			name:       "other category does not gate",
			activities: []Activity{first, other},
			target:     1,
			allowed:    true,
		},
		{
			name: "unchecking always allowed",
			activities: []Activity{
				{Category: "bedroom", Position: 0, Completed: true},
				{Category: "bedroom", Position: 1, Completed: true},
			},
			target:  0,
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activities := make([]Activity, len(tt.activities))
			copy(activities, tt.activities)
			for i := range activities {
				activities[i].ID = uuid.New()
			}

			assert.Equal(t, tt.allowed, toggleAllowed(activities, &activities[tt.target]))
		})
	}
}

func TestFinishedRoomIsImmediatelySelectable(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "120", RoomStatusCheckout)
	proceedWithRoom(t, controller, worker.ID, room.ID)
	completeAllActivities(t, db, room.ID)

	_, err := controller.Finish(ctx, room.ID)
	require.NoError(t, err)

	// An available room cycles back through checkout before it can be
	// cleaned again.
	require.NoError(t, db.SQL.Model(&Room{}).
		Where("id = ?", room.ID).
		Update("status", RoomStatusCheckout).Error)
	require.NoError(t, db.SQL.Model(&Activity{}).
		Where("room_id = ?", room.ID).
		Update("completed", false).Error)

	_, err = controller.SelectRooms(ctx, worker.ID, []uuid.UUID{room.ID})
	require.NoError(t, err)
	_, err = controller.Proceed(ctx, worker.ID)
	require.NoError(t, err)

	assert.Equal(t, RoomStatusInCleaning, reloadRoom(t, db, room.ID).Status)
}
