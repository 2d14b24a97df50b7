package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, opts...), mr
}

func TestBindAndLookup(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, ok, err := s.Binding(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Bind(ctx, 100, 7, "access-1", "refresh-1"))

	b, ok, err := s.Binding(ctx, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Binding{BackendID: 7, Credential: "access-1", Refresh: "refresh-1"}, b)

	chat, ok, err := s.ChatFor(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), chat)

	// Keys follow the shared layout.
	assert.Equal(t, "7", mustGet(t, mr, "identity:100"))
	assert.Equal(t, "100", mustGet(t, mr, "backend:7:chat"))
	assert.Equal(t, "access-1", mustGet(t, mr, "backend:7:credential"))

	require.NoError(t, s.UpdateCredential(ctx, 7, "access-2"))
	b, _, err = s.Binding(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "access-2", b.Credential)
}

func TestBindLastLoginWins(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.Bind(ctx, 100, 7, "a7", "r7"))
	// Same chat logs into another account: account 7 loses its chat.
	require.NoError(t, s.Bind(ctx, 100, 8, "a8", ""))

	_, ok, err := s.ChatFor(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("backend:7:credential"))
	assert.False(t, mr.Exists("backend:7:refresh"))

	b, ok, err := s.Binding(ctx, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(8), b.BackendID)
	assert.Empty(t, b.Refresh)

	// Account 8 logs in from another chat: chat 100 is unbound.
	require.NoError(t, s.Bind(ctx, 200, 8, "a8b", "r8"))
	_, ok, err = s.Binding(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	chat, ok, err := s.ChatFor(ctx, 8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), chat)
}

func TestState(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	st, err := s.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	require.NoError(t, s.SetState(ctx, 100, State{Tag: "update_product_ask_fields", Payload: "7"}))
	assert.Equal(t, "update_product_ask_fields:7", mustGet(t, mr, "identity:100:state"))

	st, err = s.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, State{Tag: "update_product_ask_fields", Payload: "7"}, st)

	require.NoError(t, s.SetState(ctx, 100, State{Tag: "login"}))
	st, err = s.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, State{Tag: "login"}, st, "payload is cleared together with the state")

	require.NoError(t, s.SetState(ctx, 100, State{}))
	assert.False(t, mr.Exists("identity:100:state"))
}

func TestLockSerializes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithLockTiming(time.Second, 2*time.Second, time.Millisecond))

	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.Lock(ctx, 100)
			if !assert.NoError(t, err) {
				return
			}
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.False(t, overlap.Load())
}

func TestLockTimeout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithLockTiming(time.Minute, 30*time.Millisecond, 5*time.Millisecond))

	unlock, err := s.Lock(ctx, 100)
	require.NoError(t, err)

	_, err = s.Lock(ctx, 100)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// Other identities are independent.
	unlockOther, err := s.Lock(ctx, 200)
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock, err = s.Lock(ctx, 100)
	require.NoError(t, err)
	unlock()
}

func TestUnlockKeepsForeignLock(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, WithLockTiming(time.Second, 50*time.Millisecond, 5*time.Millisecond))

	unlock, err := s.Lock(ctx, 100)
	require.NoError(t, err)

	// The lock expired and someone else took it.
	mr.FastForward(2 * time.Second)
	unlock2, err := s.Lock(ctx, 100)
	require.NoError(t, err)

	unlock()
	assert.True(t, mr.Exists("identity:100:lock"))
	unlock2()
	assert.False(t, mr.Exists("identity:100:lock"))
}

func TestLockLeaseOutlivesTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, WithLockTiming(300*time.Millisecond, 20*time.Millisecond, 5*time.Millisecond))

	unlock, err := s.Lock(ctx, 100)
	require.NoError(t, err)

	// Most of the TTL passes while the holder is still working.
	mr.FastForward(250 * time.Millisecond)
	require.Eventually(t, func() bool {
		return mr.TTL("identity:100:lock") > 100*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond, "lease renewed")

	_, err = s.Lock(ctx, 100)
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()
	assert.False(t, mr.Exists("identity:100:lock"))

	next, err := s.Lock(ctx, 100)
	require.NoError(t, err)
	next()
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err, key)
	return v
}
