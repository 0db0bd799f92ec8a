package assignmentController

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

var (
	ErrValidation         = roomsController.ErrValidation
	ErrNotFound           = roomsController.ErrNotFound
	ErrInvalidTransition  = roomsController.ErrInvalidTransition
	ErrConflict           = roomsController.ErrConflict
	ErrPendingNegotiation = errors.New("room already has a pending negotiation")
)

// AssignmentController runs the propose/accept-or-reject exchange between
// manager and worker. Negotiations are single-flight per room and purely
// in-memory: nothing about a negotiation survives its resolution, only the
// room transition and ledger entry it produces on acceptance.
type AssignmentController struct {
	roomController     roomsController.RoomControllerInterface
	roomRepo           repositories.RoomRepository
	workerRepo         repositories.WorkerRepository
	transactionService *services.TransactionService
	roomLock           *services.RoomLockService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger

	mu           sync.Mutex
	negotiations map[uuid.UUID]*Negotiation
	pendingRooms map[uuid.UUID]uuid.UUID // room id -> negotiation id
}

type ProposeRequest struct {
	RoomID         uuid.UUID `json:"roomId"`
	WorkerID       uuid.UUID `json:"workerId"`
	IsReassignment bool      `json:"reassignment,omitempty"`
}

// ResolveResponse surfaces the rejected worker id on rejection so the caller
// can immediately re-propose the room to a different worker.
type ResolveResponse struct {
	Negotiation      *Negotiation `json:"negotiation"`
	RejectedWorkerID *uuid.UUID   `json:"rejectedWorkerId,omitempty"`
}

type AssignmentControllerInterface interface {
	Propose(ctx context.Context, request *ProposeRequest) (*Negotiation, error)
	Resolve(ctx context.Context, negotiationID uuid.UUID, accepted bool) (*ResolveResponse, error)
	PendingNegotiation(roomID uuid.UUID) (*Negotiation, bool)
}

func New(
	roomController roomsController.RoomControllerInterface,
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) AssignmentControllerInterface {
	return &AssignmentController{
		roomController:     roomController,
		roomRepo:           repos.Room,
		workerRepo:         repos.Worker,
		transactionService: services.Transaction,
		roomLock:           services.RoomLock,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("assignmentController"),
		negotiations:       make(map[uuid.UUID]*Negotiation),
		pendingRooms:       make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *AssignmentController) Propose(
	ctx context.Context,
	request *ProposeRequest,
) (*Negotiation, error) {
	log := c.log.Function("Propose")

	worker, err := c.workerRepo.GetByID(ctx, c.db.SQL, request.WorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !worker.Active {
		log.Info("Rejecting proposal for inactive worker", "workerID", worker.ID)
		return nil, ErrValidation
	}

	room, err := c.roomController.GetRoom(ctx, request.RoomID)
	if err != nil {
		return nil, err
	}

	if request.IsReassignment {
		if room.Status != RoomStatusAssigned && room.Status != RoomStatusInCleaning {
			return nil, ErrInvalidTransition
		}
	} else {
		if room.Status != RoomStatusCheckout {
			return nil, ErrInvalidTransition
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pendingRooms[room.ID]; exists {
		return nil, ErrPendingNegotiation
	}

	negotiation := &Negotiation{
		ID:               uuid.New(),
		RoomID:           room.ID,
		ProposedWorkerID: worker.ID,
		Outcome:          NegotiationPending,
		IsReassignment:   request.IsReassignment,
		ProposedAt:       time.Now(),
	}

	c.negotiations[negotiation.ID] = negotiation
	c.pendingRooms[room.ID] = negotiation.ID

	log.Info(
		"Negotiation proposed",
		"negotiationID", negotiation.ID,
		"roomNumber", room.Number,
		"workerID", worker.ID,
		"reassignment", negotiation.IsReassignment,
	)

	result := *negotiation
	return &result, nil
}

func (c *AssignmentController) Resolve(
	ctx context.Context,
	negotiationID uuid.UUID,
	accepted bool,
) (*ResolveResponse, error) {
	log := c.log.Function("Resolve")

	c.mu.Lock()
	negotiation, exists := c.negotiations[negotiationID]
	c.mu.Unlock()

	if !exists || !negotiation.Pending() {
		return nil, ErrNotFound
	}

	if !accepted {
		// Rejection changes nothing about the room. For an initial proposal
		// it stays on the checkout queue; for a reassignment the in-progress
		// session is undisturbed.
		c.terminate(negotiation, NegotiationRejected)

		log.Info(
			"Negotiation rejected",
			"negotiationID", negotiation.ID,
			"workerID", negotiation.ProposedWorkerID,
		)

		rejectedWorkerID := negotiation.ProposedWorkerID
		result := *negotiation
		return &ResolveResponse{
			Negotiation:      &result,
			RejectedWorkerID: &rejectedWorkerID,
		}, nil
	}

	var room *Room
	err := c.roomLock.WithRoom(negotiation.RoomID, func() error {
		return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			var err error
			room, err = c.roomRepo.GetByID(ctx, tx, negotiation.RoomID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}

			if negotiation.IsReassignment {
				return c.roomController.Reassign(ctx, tx, room, negotiation.ProposedWorkerID)
			}
			return c.roomController.Assign(ctx, tx, room, negotiation.ProposedWorkerID)
		})
	})
	if err != nil {
		// The room moved on while the negotiation sat pending; the proposal
		// can never apply, so it dies here rather than lingering.
		c.terminate(negotiation, NegotiationRejected)
		return nil, err
	}

	c.terminate(negotiation, NegotiationAccepted)

	workerID := negotiation.ProposedWorkerID
	toStatus := RoomStatusAssigned
	if negotiation.IsReassignment {
		toStatus = room.Status
	}
	if err := c.eventBus.PublishRoomChanged(
		room.ID,
		room.Number,
		room.Status.String(),
		toStatus.String(),
		&workerID,
	); err != nil {
		log.Warn("failed to publish room change", "roomID", room.ID, "error", err)
	}

	log.Info(
		"Negotiation accepted",
		"negotiationID", negotiation.ID,
		"roomNumber", room.Number,
		"workerID", negotiation.ProposedWorkerID,
	)

	result := *negotiation
	return &ResolveResponse{Negotiation: &result}, nil
}

// PendingNegotiation reports the pending negotiation for a room, if any.
func (c *AssignmentController) PendingNegotiation(roomID uuid.UUID) (*Negotiation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	negotiationID, exists := c.pendingRooms[roomID]
	if !exists {
		return nil, false
	}

	negotiation := c.negotiations[negotiationID]
	result := *negotiation
	return &result, true
}

func (c *AssignmentController) terminate(negotiation *Negotiation, outcome NegotiationOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	negotiation.Outcome = outcome
	delete(c.negotiations, negotiation.ID)
	delete(c.pendingRooms, negotiation.RoomID)
}
