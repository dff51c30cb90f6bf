package handler // handler package contains the seat booking handlers

import (
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers
	"go.uber.org/zap"             // zap logs unexpected failures

	"github.com/iliyamo/popcorn-palace/internal/service" // service implements seat allocation
)

// BookingHandler exposes seat booking over HTTP.
type BookingHandler struct {
	svc *service.BookingService
	log *zap.Logger
}

// NewBookingHandler constructs a BookingHandler and panics if svc is nil.
func NewBookingHandler(svc *service.BookingService, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc, log: nopIfNil(log)}
}

// bookingRequest is the JSON body of booking writes.  The seat is decoded
// as a float so that 4.5 is rejected instead of silently truncated.
type bookingRequest struct {
	ShowtimeID *uint64  `json:"showtimeId"`
	SeatNumber *float64 `json:"seatNumber"`
	UserID     *string  `json:"userId"`
}

func (r bookingRequest) patch() (service.BookingPatch, string) {
	p := service.BookingPatch{ShowtimeID: r.ShowtimeID, UserID: r.UserID}
	if r.SeatNumber != nil {
		n, ok := wholeNumber(*r.SeatNumber)
		if !ok {
			return p, "seatNumber must be a whole number"
		}
		p.SeatNumber = &n
	}
	return p, ""
}

// ListBookings handles GET /bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	out, err := h.svc.ListBookings(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body bookingRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ShowtimeID == nil || body.SeatNumber == nil || body.UserID == nil {
		return badRequest(c, "showtimeId, seatNumber and userId are required")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	b, err := h.svc.CreateBooking(c.Request().Context(), service.BookingInput{
		ShowtimeID: *p.ShowtimeID,
		SeatNumber: *p.SeatNumber,
		UserID:     *p.UserID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateBooking handles PUT /bookings/:id.
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var body bookingRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	b, err := h.svc.UpdateBooking(c.Request().Context(), id, p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBooking handles DELETE /bookings/:id.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := h.svc.DeleteBooking(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return deleted(c, "Booking with ID %d was deleted successfully.", id)
}
