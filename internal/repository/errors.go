// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors. Both the MySQL store and the in-memory store
// return exactly these values.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrMovieNotFound indicates that no movie matched the lookup.
var ErrMovieNotFound = errors.New("movie not found")

// ErrShowtimeNotFound indicates that no showtime matched the lookup.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrBookingNotFound indicates that no booking matched the lookup.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicate is returned when a write violates a unique constraint:
// (title, release_year) for movies or (showtime_id, seat_number) for
// bookings. Services translate this into a conflict.
var ErrDuplicate = errors.New("duplicate record")

// ErrOverlap is returned when a showtime write would overlap another
// showtime in the same theater. It is detected under the per-theater
// lock, so it is authoritative even when a pre-check passed.
var ErrOverlap = errors.New("overlapping showtime")

// MySQL server error numbers mapped by the repositories.
const (
	mysqlDupEntry        = 1062 // ER_DUP_ENTRY
	mysqlNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// isDuplicate reports whether err is a unique-key violation.
func isDuplicate(err error) bool { return isMySQLError(err, mysqlDupEntry) }

// isMissingParent reports whether err is a foreign-key violation on insert/update.
func isMissingParent(err error) bool { return isMySQLError(err, mysqlNoReferencedRow) }
