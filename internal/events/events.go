package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"turnover/config"
	"turnover/internal/logger"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	ROOMS_CHANNEL    Channel = "rooms"
	MESSAGES_CHANNEL Channel = "messages"
)

type MessageType string

const (
	ROOM_CHANGED     MessageType = "room_changed"
	MESSAGE_APPENDED MessageType = "message_appended"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	WorkerID  *uuid.UUID     `json:"workerId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// EventBus distributes change notifications to the role dashboards. Events
// are published to valkey pub/sub so every instance sees them, and local
// handlers are invoked directly.
type EventBus struct {
	client   valkey.Client
	logger   logger.Logger
	config   config.Config
	handlers map[Channel][]EventHandler
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(client valkey.Client, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:   client,
		logger:   logger.New("EventBus"),
		config:   config,
		handlers: make(map[Channel][]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	// Without a valkey client the bus is local-only: events still reach
	// handlers on this instance but are not fanned out to peers.
	if eb.client == nil {
		eb.notifyLocalHandlers(channel, event)
		return nil
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel", channel,
			"eventID", event.ID,
		)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)

	eb.notifyLocalHandlers(channel, event)

	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	go eb.listenToChannel(channel)

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers, exists := eb.handlers[channel]
	eb.mutex.RUnlock()

	if !exists || len(handlers) == 0 {
		return
	}

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er(
					"handler failed",
					err,
					"channel", channel,
					"eventID", event.ID,
					"handlerIndex", handlerIndex,
				)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")

	if eb.client == nil {
		return
	}

	ctx, cancel := context.WithCancel(eb.ctx)
	defer cancel()

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel, "message", msg.Message)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}

// PublishRoomChanged announces a committed room transition so dashboards can
// refresh their status boards.
func (eb *EventBus) PublishRoomChanged(
	roomID uuid.UUID,
	roomNumber string,
	fromStatus, toStatus string,
	workerID *uuid.UUID,
) error {
	return eb.Publish(ROOMS_CHANNEL, Event{
		Type:     ROOM_CHANGED,
		WorkerID: workerID,
		Data: map[string]any{
			"roomId":     roomID.String(),
			"roomNumber": roomNumber,
			"fromStatus": fromStatus,
			"toStatus":   toStatus,
		},
	})
}

// PublishMessageAppended announces a new escalation message for the manager
// dashboard.
func (eb *EventBus) PublishMessageAppended(roomNumber string, workerID uuid.UUID) error {
	return eb.Publish(MESSAGES_CHANNEL, Event{
		Type:     MESSAGE_APPENDED,
		WorkerID: &workerID,
		Data: map[string]any{
			"roomNumber": roomNumber,
		},
	})
}
