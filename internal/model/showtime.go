package model

import "time"

// Showtime represents a scheduled screening of a movie in a theater.
// Showtimes in the same theater never overlap; the interval check is
// inclusive so a showtime ending at 12:00 conflicts with one starting
// at 12:00.  A showtime belongs to exactly one movie and is removed
// together with it.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  Movie     – the movie row, populated by read views only.
//  Theater   – free-text theater name, matched case-sensitively.
//  StartTime – when the screening begins.
//  EndTime   – when the screening ends (after StartTime).
//  Price     – ticket price, always positive.
type Showtime struct {
	ID        uint64    `json:"id"`              // showtimes.id
	MovieID   uint64    `json:"movieId"`         // showtimes.movie_id
	Movie     *Movie    `json:"movie,omitempty"` // joined from movies
	Theater   string    `json:"theater"`         // showtimes.theater
	StartTime time.Time `json:"start_time"`      // showtimes.start_time
	EndTime   time.Time `json:"end_time"`        // showtimes.end_time
	Price     float64   `json:"price"`           // showtimes.price
}

// Overlaps reports whether the showtime's interval intersects [start, end].
// Touching endpoints count as an overlap.
func (s Showtime) Overlaps(start, end time.Time) bool {
	return !s.StartTime.After(end) && !s.EndTime.Before(start)
}

// ShowtimeSales is a read view of a showtime with the number of
// bookings made for it.
type ShowtimeSales struct {
	ID          uint64    `json:"id"`
	Theater     string    `json:"theater"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Price       float64   `json:"price"`
	MovieTitle  string    `json:"movie_title"`
	TicketsSold int       `json:"ticketsSold"`
}
