// Package queue carries booking events over RabbitMQ: payloads, a publisher
// and the consumer that records them in logs/booking.log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventsQueue is the durable queue that carries booking lifecycle events.
const BookingEventsQueue = "booking.events"

// Booking event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// BookingEvent is published whenever a seat is allocated, moved or released.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	BookingID  uint64    `json:"booking_id"`
	ShowtimeID uint64    `json:"showtime_id"`
	SeatNumber int       `json:"seat_number"`
	UserID     string    `json:"user_id"`
	Theater    string    `json:"theater,omitempty"`
	StartsAt   time.Time `json:"starts_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent stamps a fresh event id and the occurrence time.
func NewBookingEvent(eventType string, at time.Time) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
	}
}
