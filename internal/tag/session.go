package tag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// SessionKeyPrefix namespaces disambiguation sessions in Redis.
const SessionKeyPrefix = "tag_session:"

// sessionExpiryGrace extends the stored key's lifetime past the local
// expiry timer. The timer fires after the SET, so a key expiring at
// exactly the session TTL would already be gone when the timeout path
// tries to claim it; Redis expiry is only the backstop for sessions a
// dead process never got to expire.
const sessionExpiryGrace = 30 * time.Second

// ErrSessionNotFound is returned when a session has expired, was never
// created, or was already claimed by another terminal path.
var ErrSessionNotFound = errors.New("tag session not found")

// Session is the state of one pending disambiguation prompt. It lives
// in Redis under a TTL so an abandoned prompt cannot leak state.
type Session struct {
	ID                string       `json:"id"`
	GuildID           snowflake.ID `json:"guildId"`
	ChannelID         snowflake.ID `json:"channelId"`
	RequesterID       snowflake.ID `json:"requesterId"`
	OriginalMessageID snowflake.ID `json:"originalMessageId"`
	PromptMessageID   snowflake.ID `json:"promptMessageId"`
	Candidates        []string     `json:"candidates"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// SessionStore keeps disambiguation sessions in Redis and arms a local
// expiry timer per session. Claim is the single point of termination:
// exactly one caller gets the session back, every other path sees
// ErrSessionNotFound.
type SessionStore struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewSessionStore creates a session store with the given prompt
// lifetime.
func NewSessionStore(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("tag_session"),
		timers: make(map[string]*time.Timer),
	}
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create persists the session and arms its expiry timer. onExpire runs
// once if the session reaches its TTL without being claimed.
func (s *SessionStore) Create(ctx context.Context, session *Session, onExpire func(*Session)) error {
	data, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.client.Do(ctx, s.client.B().Set().
		Key(SessionKeyPrefix+session.ID).
		Value(string(data)).
		Ex(s.ttl+sessionExpiryGrace).
		Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.mu.Lock()
	s.timers[session.ID] = time.AfterFunc(s.ttl, func() {
		s.expire(session.ID, onExpire)
	})
	s.mu.Unlock()

	return nil
}

// Peek reads a session without claiming it. Used to verify the
// interacting user before committing to a terminal path.
func (s *SessionStore) Peek(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().
		Key(SessionKeyPrefix+sessionID).
		Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return unmarshalSession(data)
}

// Claim atomically removes and returns the session. The GETDEL makes
// the select, cancel and timeout paths mutually exclusive; only the
// first claimant proceeds.
func (s *SessionStore) Claim(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Do(ctx, s.client.B().Getdel().
		Key(SessionKeyPrefix+sessionID).
		Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to claim session: %w", err)
	}

	s.stopTimer(sessionID)

	return unmarshalSession(data)
}

// Close cancels all pending expiry timers.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// expire claims the session on behalf of the timeout path and hands it
// to the callback. A session already claimed by select or cancel is
// simply gone.
func (s *SessionStore) expire(sessionID string, onExpire func(*Session)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := s.Claim(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Error("Failed to expire session",
				zap.String("sessionID", sessionID),
				zap.Error(err))
		}

		return
	}

	onExpire(session)
}

func (s *SessionStore) stopTimer(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
}

func unmarshalSession(data []byte) (*Session, error) {
	var session Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}
