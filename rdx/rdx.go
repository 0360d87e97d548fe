package rdx

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
}

// DedupeScan claims a scanned payload for the dedupe window across all
// scanner instances. Returns false when another scanner processed the
// same payload within the window. Redis being down fails open: a
// duplicate mark is idempotent anyway.
func DedupeScan(ctx context.Context, payload string, window time.Duration) bool {
	ok, err := Conn.SetNX(ctx, "scan:"+payload, 1, window).Result()
	if err != nil {
		log.Println("Redis scan dedupe error:", err)
		return true
	}
	return ok
}

// ReleaseScan drops a payload's claim so a scan that failed mid-flight
// can be retried right away on any scanner instance.
func ReleaseScan(ctx context.Context, payload string) {
	if err := Conn.Del(ctx, "scan:"+payload).Err(); err != nil {
		log.Println("Redis scan release error:", err)
	}
}

// CacheSeatCount stores the occupied-seat count for the public
// seats-left display. Short TTL keeps the display honest without
// hitting Mongo on every poll.
func CacheSeatCount(ctx context.Context, eventID string, occupied int) {
	if err := Conn.Set(ctx, "seats:"+eventID, occupied, 5*time.Second).Err(); err != nil {
		log.Println("Redis seat cache error:", err)
	}
}

// CachedSeatCount returns the cached occupied count, or ok=false on a
// miss or Redis failure.
func CachedSeatCount(ctx context.Context, eventID string) (int, bool) {
	val, err := Conn.Get(ctx, "seats:"+eventID).Result()
	if err != nil {
		if err != redis.Nil {
			log.Println("Redis seat cache error:", err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}
