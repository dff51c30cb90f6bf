package handler // handler package contains the showtime scheduling handlers

import (
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers
	"go.uber.org/zap"             // zap logs unexpected failures

	"github.com/iliyamo/popcorn-palace/internal/service" // service implements the scheduling rules
)

// ShowtimeHandler exposes showtime scheduling over HTTP.
type ShowtimeHandler struct {
	svc *service.ShowtimeService
	log *zap.Logger
}

// NewShowtimeHandler constructs a ShowtimeHandler and panics if svc is nil.
func NewShowtimeHandler(svc *service.ShowtimeService, log *zap.Logger) *ShowtimeHandler {
	if svc == nil {
		panic("nil service passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{svc: svc, log: nopIfNil(log)}
}

// showtimeRequest is the JSON body of showtime writes.  Times are RFC 3339.
type showtimeRequest struct {
	MovieID   *uint64  `json:"movieId"`
	Theater   *string  `json:"theater"`
	StartTime *string  `json:"start_time"`
	EndTime   *string  `json:"end_time"`
	Price     *float64 `json:"price"`
}

func (r showtimeRequest) patch() (service.ShowtimePatch, string) {
	p := service.ShowtimePatch{MovieID: r.MovieID, Theater: r.Theater, Price: r.Price}
	var err error
	if p.StartTime, err = parseTime(r.StartTime); err != nil {
		return p, "invalid start_time format, want RFC 3339"
	}
	if p.EndTime, err = parseTime(r.EndTime); err != nil {
		return p, "invalid end_time format, want RFC 3339"
	}
	return p, ""
}

// ListShowtimes handles GET /showtimes/all.
func (h *ShowtimeHandler) ListShowtimes(c echo.Context) error {
	out, err := h.svc.ListShowtimes(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListShowtimeSales handles GET /showtimes/bookings and reports how many
// tickets each showtime sold.
func (h *ShowtimeHandler) ListShowtimeSales(c echo.Context) error {
	out, err := h.svc.ListShowtimeSales(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetShowtime handles GET /showtimes/:id.
func (h *ShowtimeHandler) GetShowtime(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	st, err := h.svc.GetShowtime(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

// AddShowtime handles POST /showtimes.  Every field is required.
func (h *ShowtimeHandler) AddShowtime(c echo.Context) error {
	var body showtimeRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.MovieID == nil || body.Theater == nil || body.StartTime == nil || body.EndTime == nil || body.Price == nil {
		return badRequest(c, "movieId, theater, start_time, end_time and price are required")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	st, err := h.svc.AddShowtime(c.Request().Context(), service.ShowtimeInput{
		MovieID:   *p.MovieID,
		Theater:   *p.Theater,
		StartTime: *p.StartTime,
		EndTime:   *p.EndTime,
		Price:     *p.Price,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// UpdateShowtime handles PUT /showtimes/update/:id.
func (h *ShowtimeHandler) UpdateShowtime(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	var body showtimeRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	st, err := h.svc.UpdateShowtime(c.Request().Context(), id, p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DeleteShowtime handles DELETE /showtimes/:id.
func (h *ShowtimeHandler) DeleteShowtime(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	if err := h.svc.DeleteShowtime(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return deleted(c, "Showtime with ID %d was deleted successfully.", id)
}
