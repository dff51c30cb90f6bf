package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables used by the repositories.  Statements are
// idempotent so Migrate can run on every start.
//
// Text columns that take part in lookups use utf8mb4_bin so that title and
// theater comparisons are exact and case-sensitive.  The unique indexes on
// movies and bookings, and the theater_locks table used to serialize
// showtime writes, are what keep the data consistent under concurrency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		genre VARCHAR(32) NOT NULL,
		duration INT NOT NULL,
		rating DOUBLE NOT NULL,
		release_year INT NOT NULL,
		UNIQUE KEY uq_movies_title_year (title, release_year)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		theater VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		start_time DATETIME(3) NOT NULL,
		end_time DATETIME(3) NOT NULL,
		price DOUBLE NOT NULL,
		KEY idx_showtimes_theater_start (theater, start_time),
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies (id) ON DELETE CASCADE,
		CONSTRAINT chk_showtimes_interval CHECK (end_time > start_time),
		CONSTRAINT chk_showtimes_price CHECK (price > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_number INT NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_bookings_showtime_seat (showtime_id, seat_number),
		CONSTRAINT fk_bookings_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes (id) ON DELETE CASCADE,
		CONSTRAINT chk_bookings_seat CHECK (seat_number BETWEEN 1 AND 100)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS theater_locks (
		theater VARCHAR(255) COLLATE utf8mb4_bin NOT NULL PRIMARY KEY
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  It stops at the first failing statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
