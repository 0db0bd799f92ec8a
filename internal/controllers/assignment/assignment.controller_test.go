package assignmentController

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

func setupTest(t *testing.T) (database.DB, AssignmentControllerInterface) {
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
	}
	require.NoError(t, db.SQL.Create(room).Error)
	return room
}

func reloadRoom(t *testing.T, db database.DB, roomID uuid.UUID) *Room {
	t.Helper()

	var room Room
	require.NoError(t, db.SQL.First(&room, "id = ?", roomID).Error)
	return &room
}

func TestPropose(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "301", RoomStatusCheckout)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:   room.ID,
		WorkerID: worker.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, NegotiationPending, negotiation.Outcome)
	assert.Equal(t, room.ID, negotiation.RoomID)
	assert.Equal(t, worker.ID, negotiation.ProposedWorkerID)
	assert.False(t, negotiation.IsReassignment)

	// Proposing never touches the room.
	assert.Equal(t, RoomStatusCheckout, reloadRoom(t, db, room.ID).Status)

	pending, ok := controller.PendingNegotiation(room.ID)
	require.True(t, ok)
	assert.Equal(t, negotiation.ID, pending.ID)
}

func TestPropose_SingleFlightPerRoom(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	workerA := createTestWorker(t, db, true)
	workerB := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "302", RoomStatusCheckout)

	_, err := controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: workerA.ID})
	require.NoError(t, err)

	_, err = controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: workerB.ID})
	assert.ErrorIs(t, err, ErrPendingNegotiation)
}

func TestPropose_InactiveWorker(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, false)
	room := createTestRoom(t, db, "303", RoomStatusCheckout)

	_, err := controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: worker.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropose_RoomNotOnCheckoutQueue(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "304", RoomStatusAvailable)

	_, err := controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: worker.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPropose_UnknownWorkerAndRoom(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "305", RoomStatusCheckout)

	_, err := controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = controller.Propose(ctx, &ProposeRequest{RoomID: uuid.New(), WorkerID: worker.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_Accepted(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "306", RoomStatusCheckout)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:   room.ID,
		WorkerID: worker.ID,
	})
	require.NoError(t, err)

	response, err := controller.Resolve(ctx, negotiation.ID, true)
	require.NoError(t, err)
	assert.Equal(t, NegotiationAccepted, response.Negotiation.Outcome)
	assert.Nil(t, response.RejectedWorkerID)

	assigned := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedWorkerID)
	assert.Equal(t, worker.ID, *assigned.AssignedWorkerID)

	var event AssignmentEvent
	require.NoError(t, db.SQL.First(&event, "worker_id = ?", worker.ID).Error)
	assert.Equal(t, AssignedByManager, event.AssignedBy)

	// Resolution consumes the negotiation.
	_, ok := controller.PendingNegotiation(room.ID)
	assert.False(t, ok)
	_, err = controller.Resolve(ctx, negotiation.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_Rejected(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	replacement := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "307", RoomStatusCheckout)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:   room.ID,
		WorkerID: worker.ID,
	})
	require.NoError(t, err)

	response, err := controller.Resolve(ctx, negotiation.ID, false)
	require.NoError(t, err)
	assert.Equal(t, NegotiationRejected, response.Negotiation.Outcome)
	require.NotNil(t, response.RejectedWorkerID)
	assert.Equal(t, worker.ID, *response.RejectedWorkerID)

	// Rejection leaves the room on the checkout queue, with no ledger entry.
	rejected := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusCheckout, rejected.Status)
	assert.Nil(t, rejected.AssignedWorkerID)

	var count int64
	require.NoError(t, db.SQL.Model(&AssignmentEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// The room is immediately proposable to someone else.
	_, err = controller.Propose(ctx, &ProposeRequest{RoomID: room.ID, WorkerID: replacement.ID})
	require.NoError(t, err)
}

func TestResolve_Reassignment(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	original := createTestWorker(t, db, true)
	replacement := createTestWorker(t, db, true)

	room := &Room{
		Number:           "308",
		Type:             "standard",
		Floor:            3,
		Status:           RoomStatusInCleaning,
		AssignedWorkerID: &original.ID,
	}
	require.NoError(t, db.SQL.Create(room).Error)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:         room.ID,
		WorkerID:       replacement.ID,
		IsReassignment: true,
	})
	require.NoError(t, err)

	_, err = controller.Resolve(ctx, negotiation.ID, true)
	require.NoError(t, err)

	reassigned := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusInCleaning, reassigned.Status)
	require.NotNil(t, reassigned.AssignedWorkerID)
	assert.Equal(t, replacement.ID, *reassigned.AssignedWorkerID)
}

func TestResolve_RejectedReassignmentLeavesSessionAlone(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	original := createTestWorker(t, db, true)
	replacement := createTestWorker(t, db, true)

	room := &Room{
		Number:           "309",
		Type:             "standard",
		Floor:            3,
		Status:           RoomStatusInCleaning,
		AssignedWorkerID: &original.ID,
	}
	require.NoError(t, db.SQL.Create(room).Error)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:         room.ID,
		WorkerID:       replacement.ID,
		IsReassignment: true,
	})
	require.NoError(t, err)

	_, err = controller.Resolve(ctx, negotiation.ID, false)
	require.NoError(t, err)

	untouched := reloadRoom(t, db, room.ID)
	assert.Equal(t, RoomStatusInCleaning, untouched.Status)
	require.NotNil(t, untouched.AssignedWorkerID)
	assert.Equal(t, original.ID, *untouched.AssignedWorkerID)
}

func TestResolve_RoomMovedWhilePending(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := createTestWorker(t, db, true)
	room := createTestRoom(t, db, "310", RoomStatusCheckout)

	negotiation, err := controller.Propose(ctx, &ProposeRequest{
		RoomID:   room.ID,
		WorkerID: worker.ID,
	})
	require.NoError(t, err)

	// Another worker self-selects the room while the proposal sits pending.
	require.NoError(t, db.SQL.Model(&Room{}).
		Where("id = ?", room.ID).
		Update("status", RoomStatusInCleaning).Error)

	_, err = controller.Resolve(ctx, negotiation.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The doomed negotiation is gone, not stuck pending.
	_, ok := controller.PendingNegotiation(room.ID)
	assert.False(t, ok)
}

func TestResolve_UnknownNegotiation(t *testing.T) {
	_, controller := setupTest(t)

	_, err := controller.Resolve(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}
