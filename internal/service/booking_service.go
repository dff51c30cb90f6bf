package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/popcorn-palace/internal/model"
	"github.com/iliyamo/popcorn-palace/internal/queue"
	"github.com/iliyamo/popcorn-palace/internal/repository"
)

// Seat numbers valid for every showtime.
const (
	MinSeat = 1
	MaxSeat = 100
)

// DefaultSeatLockTTL bounds how long a seat guard may outlive a crashed request.
const DefaultSeatLockTTL = 5 * time.Second

// DefaultPublishTimeout bounds the delivery of one booking event.
const DefaultPublishTimeout = 2 * time.Second

const (
	msgWindowClosed = "booking window closed: the showtime has already ended"
	msgSeatTaken    = "seat already booked for this showtime"
)

// BookingInput carries the fields of a new booking.
type BookingInput struct {
	ShowtimeID uint64
	SeatNumber int
	UserID     string
}

// BookingPatch carries optional overwrites for an existing booking.
type BookingPatch struct {
	ShowtimeID *uint64
	SeatNumber *int
	UserID     *string
}

// BookingService allocates seats for showtimes.  Each (showtime, seat) pair
// is held by at most one booking.
type BookingService struct {
	bookings  BookingStore
	showtimes ShowtimeStore
	clock     Clock
	log       *zap.Logger
	locker    SeatLocker
	lockTTL   time.Duration
	publisher EventPublisher

	publishTimeout time.Duration
	inflight       sync.WaitGroup
}

// BookingOption configures optional collaborators of a BookingService.
type BookingOption func(*BookingService)

// WithSeatLocker guards the seat check and the write with a distributed lock.
func WithSeatLocker(l SeatLocker, ttl time.Duration) BookingOption {
	return func(s *BookingService) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithPublisher publishes booking events after every successful write.
// Delivery runs in the background, detached from the request and bounded
// by timeout (DefaultPublishTimeout when zero).
func WithPublisher(p EventPublisher, timeout time.Duration) BookingOption {
	return func(s *BookingService) {
		s.publisher = p
		if timeout > 0 {
			s.publishTimeout = timeout
		}
	}
}

// WithBookingLogger sets the service logger.
func WithBookingLogger(l *zap.Logger) BookingOption {
	return func(s *BookingService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewBookingService wires a BookingService.
func NewBookingService(bookings BookingStore, showtimes ShowtimeStore, clock Clock, opts ...BookingOption) *BookingService {
	s := &BookingService{
		bookings:  bookings,
		showtimes: showtimes,
		clock:     clock,
		log:       zap.NewNop(),
		lockTTL:   DefaultSeatLockTTL,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListBookings returns every booking.
func (s *BookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	out, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// GetBooking returns the booking with the given id.
func (s *BookingService) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, bookingLookupErr(err, id)
	}
	return b, nil
}

// CreateBooking allocates a seat.  Checks run in order and the first
// failure wins: showtime exists, showtime has not ended, seat in range,
// user present, seat free.
func (s *BookingService) CreateBooking(ctx context.Context, in BookingInput) (*model.Booking, error) {
	b := &model.Booking{ShowtimeID: in.ShowtimeID, SeatNumber: in.SeatNumber, UserID: in.UserID}
	st, err := s.checkBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	err = s.withSeatLock(ctx, b.ShowtimeID, b.SeatNumber, func() error {
		if err := s.ensureSeatFree(ctx, b.ShowtimeID, b.SeatNumber, 0); err != nil {
			return err
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			return bookingWriteErr(err, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("seat booked",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("showtime_id", b.ShowtimeID),
		zap.Int("seat", b.SeatNumber),
		zap.String("user_id", b.UserID))
	s.publish(ctx, queue.BookingCreated, b, st)
	return b, nil
}

// UpdateBooking applies patch and re-runs the allocation checks against the
// new values.  The booking's own seat does not count as taken.
func (s *BookingService) UpdateBooking(ctx context.Context, id uint64, patch BookingPatch) (*model.Booking, error) {
	cur, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, bookingLookupErr(err, id)
	}
	b := *cur
	if patch.ShowtimeID != nil {
		b.ShowtimeID = *patch.ShowtimeID
	}
	if patch.SeatNumber != nil {
		b.SeatNumber = *patch.SeatNumber
	}
	if patch.UserID != nil {
		b.UserID = *patch.UserID
	}
	st, err := s.checkBooking(ctx, &b)
	if err != nil {
		return nil, err
	}

	write := func() error {
		if err := s.ensureSeatFree(ctx, b.ShowtimeID, b.SeatNumber, b.ID); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, &b); err != nil {
			return bookingWriteErr(err, &b)
		}
		return nil
	}
	seatMoved := b.ShowtimeID != cur.ShowtimeID || b.SeatNumber != cur.SeatNumber
	if seatMoved {
		err = s.withSeatLock(ctx, b.ShowtimeID, b.SeatNumber, write)
	} else {
		err = write()
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("booking updated", zap.Uint64("booking_id", b.ID), zap.Bool("seat_moved", seatMoved))
	s.publish(ctx, queue.BookingUpdated, &b, st)
	return &b, nil
}

// DeleteBooking releases the seat held by the booking.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint64) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return bookingLookupErr(err, id)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return bookingLookupErr(err, id)
	}
	s.log.Info("booking deleted", zap.Uint64("booking_id", id))
	s.publish(ctx, queue.BookingDeleted, b, nil)
	return nil
}

// checkBooking runs every allocation rule that does not depend on other
// bookings and returns the target showtime.
func (s *BookingService) checkBooking(ctx context.Context, b *model.Booking) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, b.ShowtimeID)
	if err != nil {
		return nil, showtimeLookupErr(err, b.ShowtimeID)
	}
	if !s.clock.Now().Before(st.EndTime) {
		return nil, conflict(msgWindowClosed)
	}
	if b.SeatNumber < MinSeat || b.SeatNumber > MaxSeat {
		return nil, invalid(fmt.Sprintf("seat number must be between %d and %d", MinSeat, MaxSeat))
	}
	if strings.TrimSpace(b.UserID) == "" {
		return nil, invalid("user id is required")
	}
	return st, nil
}

func (s *BookingService) ensureSeatFree(ctx context.Context, showtimeID uint64, seat int, excludeID uint64) error {
	holder, err := s.bookings.FindBySeat(ctx, showtimeID, seat)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check seat: %w", err)
	case holder.ID == excludeID:
		return nil
	}
	return conflict(msgSeatTaken)
}

// withSeatLock runs fn while holding the distributed seat guard, when one
// is configured, and releases the guard before returning.  A guard held by
// another request is a conflict; a guard outage is logged and the store
// constraint alone decides.
func (s *BookingService) withSeatLock(ctx context.Context, showtimeID uint64, seat int, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	token, ok, err := s.locker.AcquireSeatLock(ctx, showtimeID, seat, s.lockTTL)
	if err != nil {
		s.log.Warn("seat lock unavailable", zap.Uint64("showtime_id", showtimeID), zap.Int("seat", seat), zap.Error(err))
		return fn()
	}
	if !ok {
		return conflict(msgSeatTaken)
	}
	defer func() {
		if err := s.locker.ReleaseSeatLock(context.WithoutCancel(ctx), showtimeID, seat, token); err != nil {
			s.log.Warn("seat lock release failed", zap.Uint64("showtime_id", showtimeID), zap.Int("seat", seat), zap.Error(err))
		}
	}()
	return fn()
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *model.Booking, st *model.Showtime) {
	if s.publisher == nil {
		return
	}
	ev := queue.NewBookingEvent(eventType, s.clock.Now())
	ev.BookingID = b.ID
	ev.ShowtimeID = b.ShowtimeID
	ev.SeatNumber = b.SeatNumber
	ev.UserID = b.UserID
	if st != nil {
		ev.Theater = st.Theater
		ev.StartsAt = st.StartTime
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(pctx, queue.BookingEventsQueue, ev); err != nil {
			s.log.Warn("booking event not published", zap.String("type", eventType), zap.Uint64("booking_id", ev.BookingID), zap.Error(err))
		}
	}()
}

// Close waits for booking events still being delivered.  Each delivery is
// bounded by the publish timeout.
func (s *BookingService) Close() {
	s.inflight.Wait()
}

func bookingLookupErr(err error, id uint64) error {
	if errors.Is(err, repository.ErrBookingNotFound) {
		return notFound(fmt.Sprintf("booking with id %d not found", id))
	}
	return fmt.Errorf("booking store: %w", err)
}

func bookingWriteErr(err error, b *model.Booking) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(msgSeatTaken)
	case errors.Is(err, repository.ErrShowtimeNotFound):
		return notFound(fmt.Sprintf("showtime with id %d not found", b.ShowtimeID))
	case errors.Is(err, repository.ErrBookingNotFound):
		return notFound(fmt.Sprintf("booking with id %d not found", b.ID))
	}
	return fmt.Errorf("save booking: %w", err)
}
