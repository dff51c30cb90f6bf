package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// Purge deletes every key under prefix and returns how many were removed.
// Keys are walked with SCAN so a large keyspace never blocks the server.
func Purge(ctx context.Context, client redis.Cmdable, prefix string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+":*", scanBatch).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
