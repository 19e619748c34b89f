package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// seedSession stores a raw session record the way the wallet service
// writes it. A zero ttl leaves the key without expiry.
func seedSession(t *testing.T, mr *miniredis.Miniredis, sessionID, record string, ttl time.Duration) {
	t.Helper()

	key := "session:" + sessionID
	if err := mr.Set(key, record); err != nil {
		t.Fatalf("seed session %s: %v", sessionID, err)
	}
	if ttl > 0 {
		mr.SetTTL(key, ttl)
	}
}
