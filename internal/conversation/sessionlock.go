package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionBusy is returned when another request holds the session lock and
// it could not be acquired within the retry window.
var ErrSessionBusy = errors.New("conversation: session is busy")

// Locker serializes message processing per session so that concurrent
// requests for the same session cannot interleave transcript writes.
type Locker interface {
	// Acquire takes the lock for the session and returns a release func.
	Acquire(ctx context.Context, chatbotID, sessionID string) (func(), error)
}

// RedisLocker implements Locker with a Redis SET NX key and a TTL so a
// crashed holder cannot wedge the session forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if client == nil {
		panic("conversation: redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

const (
	lockRetryInterval = 50 * time.Millisecond
	lockRetryLimit    = 40
)

func (l *RedisLocker) Acquire(ctx context.Context, chatbotID, sessionID string) (func(), error) {
	key := fmt.Sprintf("orbitchat:session-lock:%s:%s", chatbotID, sessionID)

	for attempt := 0; attempt < lockRetryLimit; attempt++ {
		ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("conversation: acquire session lock: %w", err)
		}
		if ok {
			release := func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				l.client.Del(relCtx, key)
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
	return nil, ErrSessionBusy
}

// MemoryLocker implements Locker with process-local mutexes. Suitable only
// for single-instance deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, chatbotID, sessionID string) (func(), error) {
	key := chatbotID + ":" + sessionID

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
