package handler // handler package contains the movie catalogue handlers

import (
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers
	"go.uber.org/zap"             // zap logs unexpected failures

	"github.com/iliyamo/popcorn-palace/internal/service" // service implements the catalogue rules
)

// MovieHandler exposes the movie catalogue over HTTP.
type MovieHandler struct {
	svc *service.MovieService
	log *zap.Logger
}

// NewMovieHandler constructs a MovieHandler and panics if svc is nil.
func NewMovieHandler(svc *service.MovieService, log *zap.Logger) *MovieHandler {
	if svc == nil {
		panic("nil service passed to NewMovieHandler")
	}
	return &MovieHandler{svc: svc, log: nopIfNil(log)}
}

// movieRequest is the JSON body of movie writes.  Pointers tell "absent"
// from zero so updates can be partial.
type movieRequest struct {
	Title       *string  `json:"title"`
	Genre       *string  `json:"genre"`
	Duration    *float64 `json:"duration"`
	Rating      *float64 `json:"rating"`
	ReleaseYear *float64 `json:"release_year"`
}

func (r movieRequest) patch() (service.MoviePatch, string) {
	p := service.MoviePatch{Title: r.Title, Genre: r.Genre, Rating: r.Rating}
	if r.Duration != nil {
		n, ok := wholeNumber(*r.Duration)
		if !ok {
			return p, "duration must be a whole number of minutes"
		}
		p.Duration = &n
	}
	if r.ReleaseYear != nil {
		n, ok := wholeNumber(*r.ReleaseYear)
		if !ok {
			return p, "release_year must be a whole number"
		}
		p.ReleaseYear = &n
	}
	return p, ""
}

// ListMovies handles GET /movies/all.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.svc.ListMovies(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /movies/:id.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	m, err := h.svc.GetMovie(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// AddMovie handles POST /movies.  Every field is required.
func (h *MovieHandler) AddMovie(c echo.Context) error {
	var body movieRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Title == nil || body.Genre == nil || body.Duration == nil || body.Rating == nil || body.ReleaseYear == nil {
		return badRequest(c, "title, genre, duration, rating and release_year are required")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	m, err := h.svc.AddMovie(c.Request().Context(), service.MovieInput{
		Title:       *p.Title,
		Genre:       *p.Genre,
		Duration:    *p.Duration,
		Rating:      *p.Rating,
		ReleaseYear: *p.ReleaseYear,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMovieByTitle handles PUT /movies/update/:title.
func (h *MovieHandler) UpdateMovieByTitle(c echo.Context) error {
	title, ok := titleParam(c)
	if !ok {
		return badRequest(c, "invalid movie title")
	}
	var body movieRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	m, err := h.svc.UpdateMovieByTitle(c.Request().Context(), title, p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateMovieByID handles PUT /movies/update/id/:id.
func (h *MovieHandler) UpdateMovieByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var body movieRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, msg := body.patch()
	if msg != "" {
		return badRequest(c, msg)
	}
	m, err := h.svc.UpdateMovieByID(c.Request().Context(), id, p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMovieByTitle handles DELETE /movies/:title.
func (h *MovieHandler) DeleteMovieByTitle(c echo.Context) error {
	title, ok := titleParam(c)
	if !ok {
		return badRequest(c, "invalid movie title")
	}
	if err := h.svc.DeleteMovieByTitle(c.Request().Context(), title); err != nil {
		return writeError(c, h.log, err)
	}
	return deleted(c, "Movie with title %q was deleted successfully.", title)
}

// DeleteMovieByID handles DELETE /movies/id/:id.
func (h *MovieHandler) DeleteMovieByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	if err := h.svc.DeleteMovieByID(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return deleted(c, "Movie with ID %d was deleted successfully.", id)
}
