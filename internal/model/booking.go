package model

// Booking claims one seat of a showtime for a user.  At most one
// booking exists per (ShowtimeID, SeatNumber); the store enforces
// this with a unique index and removes bookings together with their
// showtime.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime the seat belongs to.
//  SeatNumber – seat number between 1 and 100.
//  UserID     – opaque identifier of the customer.
type Booking struct {
	ID         uint64 `json:"id"`         // bookings.id
	ShowtimeID uint64 `json:"showtimeId"` // bookings.showtime_id
	SeatNumber int    `json:"seatNumber"` // bookings.seat_number
	UserID     string `json:"userId"`     // bookings.user_id
}
