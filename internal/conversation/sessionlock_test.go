package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewRedisLocker(client, time.Minute)

	release, err := locker.Acquire(context.Background(), "bot-1", "sess-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("orbitchat:session-lock:bot-1:sess-1"))

	release()
	assert.False(t, mr.Exists("orbitchat:session-lock:bot-1:sess-1"))
}

func TestRedisLockerBlocksSecondHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewRedisLocker(client, time.Minute)

	release, err := locker.Acquire(context.Background(), "bot-1", "sess-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "bot-1", "sess-1")
	assert.Error(t, err)
}

func TestRedisLockerIndependentSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewRedisLocker(client, time.Minute)

	rel1, err := locker.Acquire(context.Background(), "bot-1", "sess-1")
	require.NoError(t, err)
	defer rel1()

	rel2, err := locker.Acquire(context.Background(), "bot-1", "sess-2")
	require.NoError(t, err)
	defer rel2()
}

func TestMemoryLockerSerializes(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "bot-1", "sess-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		rel, err := locker.Acquire(context.Background(), "bot-1", "sess-1")
		assert.NoError(t, err)
		rel()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block until release")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}
