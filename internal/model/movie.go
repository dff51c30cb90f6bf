package model

// Movie is a film that can be scheduled in theaters.  The pair
// (Title, ReleaseYear) is unique across the catalogue; the store
// enforces this with a unique index.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title (never starts with whitespace).
//  Genre       – one of the allowed genres (see service.Genres).
//  Duration    – running time in minutes.
//  Rating      – score between 0 and 10.
//  ReleaseYear – year of release, never in the future.
type Movie struct {
	ID          uint64  `json:"id"`           // movies.id
	Title       string  `json:"title"`        // movies.title
	Genre       string  `json:"genre"`        // movies.genre
	Duration    int     `json:"duration"`     // movies.duration
	Rating      float64 `json:"rating"`       // movies.rating
	ReleaseYear int     `json:"release_year"` // movies.release_year
}
