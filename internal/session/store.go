// Package session is the Redis-backed store shared by the api-facing bot and
// the notification dispatcher. It holds, per chat identity, the linked
// backend account, that account's credentials and the conversation state.
//
// Keys:
//
//	identity:<chat_id>            -> backend user id
//	identity:<chat_id>:state      -> tag[:payload]
//	identity:<chat_id>:lock       -> lock token (short TTL)
//	backend:<user_id>:chat        -> chat id
//	backend:<user_id>:credential  -> access token
//	backend:<user_id>:refresh     -> refresh token
//
// A missing key always means "not set", never an error.
//
// The Lua scripts touch keys derived from values they read, so the store
// needs a single Redis node (or a primary with replicas), not a cluster.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned by Lock when the identity stays locked for
// longer than the store's wait budget.
var ErrLockTimeout = errors.New("session: identity busy")

// Binding links a chat identity to a backend account.
type Binding struct {
	BackendID  uint64
	Credential string
	Refresh    string
}

// State is the conversation slot of one chat identity. The zero value is
// the idle state.
type State struct {
	Tag     string
	Payload string
}

func (s State) encode() string {
	if s.Payload == "" {
		return s.Tag
	}
	return s.Tag + ":" + s.Payload
}

func decodeState(v string) State {
	tag, payload, _ := strings.Cut(v, ":")
	return State{Tag: tag, Payload: payload}
}

func identityKey(chatID int64) string { return "identity:" + strconv.FormatInt(chatID, 10) }
func stateKey(chatID int64) string    { return identityKey(chatID) + ":state" }
func lockKey(chatID int64) string     { return identityKey(chatID) + ":lock" }

func backendKey(backendID uint64, field string) string {
	return "backend:" + strconv.FormatUint(backendID, 10) + ":" + field
}

// bindScript links chat ARGV[1] to backend ARGV[2] atomically. The last
// login wins: keys left behind by the chat's previous account, or by the
// account's previous chat, are removed.
var bindScript = redis.NewScript(`
	local identity = KEYS[1]
	local chat, backend, credential, refresh = ARGV[1], ARGV[2], ARGV[3], ARGV[4]

	local prev = redis.call('GET', identity)
	if prev and prev ~= backend then
		redis.call('DEL', 'backend:' .. prev .. ':chat', 'backend:' .. prev .. ':credential', 'backend:' .. prev .. ':refresh')
	end
	local prevChat = redis.call('GET', 'backend:' .. backend .. ':chat')
	if prevChat and prevChat ~= chat then
		redis.call('DEL', 'identity:' .. prevChat)
	end

	redis.call('SET', identity, backend)
	redis.call('SET', 'backend:' .. backend .. ':chat', chat)
	redis.call('SET', 'backend:' .. backend .. ':credential', credential)
	if refresh ~= '' then
		redis.call('SET', 'backend:' .. backend .. ':refresh', refresh)
	else
		redis.call('DEL', 'backend:' .. backend .. ':refresh')
	end
	return 1
`)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// extendScript renews the lock's TTL only while it still holds our token.
var extendScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	return 0
`)

// Store is safe for concurrent use; all coordination happens in Redis.
type Store struct {
	rdb       *redis.Client
	lockTTL   time.Duration
	lockWait  time.Duration
	lockRetry time.Duration
}

type Option func(*Store)

// WithLockTiming overrides how long a lock lives, how long Lock waits for
// it, and how often it retries.
func WithLockTiming(ttl, wait, retry time.Duration) Option {
	return func(s *Store) {
		s.lockTTL, s.lockWait, s.lockRetry = ttl, wait, retry
	}
}

func NewStore(rdb *redis.Client, opts ...Option) *Store {
	s := &Store{
		rdb:       rdb,
		lockTTL:   30 * time.Second,
		lockWait:  10 * time.Second,
		lockRetry: 25 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Bind records a successful login of chatID as backendID.
func (s *Store) Bind(ctx context.Context, chatID int64, backendID uint64, credential, refresh string) error {
	err := bindScript.Run(ctx, s.rdb, []string{identityKey(chatID)},
		strconv.FormatInt(chatID, 10), strconv.FormatUint(backendID, 10), credential, refresh).Err()
	if err != nil {
		return fmt.Errorf("bind chat %d: %w", chatID, err)
	}
	return nil
}

// Binding returns the account bound to chatID. ok is false when the chat
// has no binding or the binding has no credential.
func (s *Store) Binding(ctx context.Context, chatID int64) (Binding, bool, error) {
	raw, err := s.rdb.Get(ctx, identityKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return Binding{}, false, nil
	}
	if err != nil {
		return Binding{}, false, fmt.Errorf("binding of chat %d: %w", chatID, err)
	}
	backendID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return Binding{}, false, fmt.Errorf("binding of chat %d: corrupt backend id %q", chatID, raw)
	}

	vals, err := s.rdb.MGet(ctx, backendKey(backendID, "credential"), backendKey(backendID, "refresh")).Result()
	if err != nil {
		return Binding{}, false, fmt.Errorf("credentials of backend %d: %w", backendID, err)
	}
	b := Binding{BackendID: backendID}
	b.Credential, _ = vals[0].(string)
	b.Refresh, _ = vals[1].(string)
	return b, b.Credential != "", nil
}

// ChatFor returns the chat currently bound to backendID.
func (s *Store) ChatFor(ctx context.Context, backendID uint64) (int64, bool, error) {
	raw, err := s.rdb.Get(ctx, backendKey(backendID, "chat")).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("chat of backend %d: %w", backendID, err)
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("chat of backend %d: corrupt chat id %q", backendID, raw)
	}
	return chatID, true, nil
}

// UpdateCredential replaces the stored access token after a refresh.
func (s *Store) UpdateCredential(ctx context.Context, backendID uint64, credential string) error {
	return s.rdb.Set(ctx, backendKey(backendID, "credential"), credential, 0).Err()
}

// State returns the conversation state; a missing key is the idle state.
func (s *Store) State(ctx context.Context, chatID int64) (State, error) {
	raw, err := s.rdb.Get(ctx, stateKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("state of chat %d: %w", chatID, err)
	}
	return decodeState(raw), nil
}

// SetState overwrites the state and payload together. Setting the zero
// State is the same as Reset.
func (s *Store) SetState(ctx context.Context, chatID int64, st State) error {
	if st.Tag == "" {
		return s.Reset(ctx, chatID)
	}
	return s.rdb.Set(ctx, stateKey(chatID), st.encode(), 0).Err()
}

// Reset returns chatID to idle, dropping any payload.
func (s *Store) Reset(ctx context.Context, chatID int64) error {
	return s.rdb.Del(ctx, stateKey(chatID)).Err()
}

// Lock serializes work on one chat identity across goroutines and
// processes. The lease is renewed every third of its TTL until the returned
// func releases it, so a slow holder keeps the lock while it is alive and a
// crashed one loses it after one TTL. Releasing is safe once the lock has
// already expired.
func (s *Store) Lock(ctx context.Context, chatID int64) (func(), error) {
	key := lockKey(chatID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	for {
		ok, err := s.rdb.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("lock chat %d: %w", chatID, err)
		}
		if ok {
			stop, stopped := make(chan struct{}), make(chan struct{})
			go s.keepLease(key, token, stop, stopped)
			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-stopped
					_ = unlockScript.Run(context.Background(), s.rdb, []string{key}, token).Err()
				})
			}, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-time.After(s.lockRetry):
		}
	}
}

// keepLease extends the lock until stop is closed or the lock is no longer
// ours. A failed renewal is retried on the next tick.
func (s *Store) keepLease(key, token string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	every := s.lockTTL / 3
	if every <= 0 {
		every = time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			held, err := extendScript.Run(context.Background(), s.rdb, []string{key}, token, s.lockTTL.Milliseconds()).Int64()
			if err == nil && held == 0 {
				return
			}
		}
	}
}
