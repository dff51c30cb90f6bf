// Package cache holds the Redis-backed helpers used around bookings and
// cached read endpoints.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSeatLockLost is returned by ReleaseSeatLock when the key expired or
// now belongs to another holder.  Nothing was deleted.
var ErrSeatLockLost = errors.New("seat lock no longer held")

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// SeatLocks guards individual seats of a showtime with short-lived Redis
// keys.  It is advisory: the bookings table's unique index stays the final
// word on who owns a seat.  Each acquisition stores a fresh token so a
// holder whose key expired cannot release the next holder's lock.
type SeatLocks struct {
	client   redis.Cmdable
	newToken func() string
}

// NewSeatLocks returns a SeatLocks backed by client.
func NewSeatLocks(client redis.Cmdable) *SeatLocks {
	return &SeatLocks{client: client, newToken: uuid.NewString}
}

// AcquireSeatLock sets the seat key if it is absent and returns the token
// that identifies this holder.  It reports false when another request
// holds the seat.
func (l *SeatLocks) AcquireSeatLock(ctx context.Context, showtimeID uint64, seat int, ttl time.Duration) (string, bool, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, seatLockKey(showtimeID, seat), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseSeatLock drops the seat key if it still carries token.
func (l *SeatLocks) ReleaseSeatLock(ctx context.Context, showtimeID uint64, seat int, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{seatLockKey(showtimeID, seat)}, token).Int64()
	if err != nil {
		return fmt.Errorf("release seat lock: %w", err)
	}
	if n == 0 {
		return ErrSeatLockLost
	}
	return nil
}

func seatLockKey(showtimeID uint64, seat int) string {
	return fmt.Sprintf("lock:showtime:%d:seat:%d", showtimeID, seat)
}
