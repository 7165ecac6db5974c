package tag_test

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/tag"
)

func setupSessionStore(t *testing.T, ttl time.Duration) *tag.SessionStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	store := tag.NewSessionStore(client, ttl, zap.NewNop())
	t.Cleanup(store.Close)

	return store
}

func testSession(id string) *tag.Session {
	return &tag.Session{
		ID:                id,
		GuildID:           snowflake.ID(1),
		ChannelID:         snowflake.ID(2),
		RequesterID:       snowflake.ID(3),
		OriginalMessageID: snowflake.ID(4),
		PromptMessageID:   snowflake.ID(5),
		Candidates:        []string{"rules", "roles"},
		CreatedAt:         time.Now().UTC(),
	}
}

func TestSessionKeyOutlivesExpiryTimer(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	store := tag.NewSessionStore(client, time.Minute, zap.NewNop())
	t.Cleanup(store.Close)

	require.NoError(t, store.Create(t.Context(), testSession("abc"), func(*tag.Session) {}))

	// The stored key must outlive the local timer, or the timeout claim
	// finds nothing and the prompt is never cleaned up
	assert.Greater(t, mr.TTL(tag.SessionKeyPrefix+"abc"), time.Minute)
}

func TestSessionPeekAndClaim(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)
	ctx := t.Context()

	require.NoError(t, store.Create(ctx, testSession("abc"), func(*tag.Session) {}))

	peeked, err := store.Peek(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(3), peeked.RequesterID)
	assert.Equal(t, []string{"rules", "roles"}, peeked.Candidates)

	// Peek does not consume the session
	claimed, err := store.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, peeked.ID, claimed.ID)
}

func TestSessionClaimIsExclusive(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)
	ctx := t.Context()

	require.NoError(t, store.Create(ctx, testSession("abc"), func(*tag.Session) {}))

	_, err := store.Claim(ctx, "abc")
	require.NoError(t, err)

	_, err = store.Claim(ctx, "abc")
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)

	_, err = store.Peek(ctx, "abc")
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)
}

func TestSessionUnknownID(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)

	_, err := store.Peek(t.Context(), "missing")
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)

	_, err = store.Claim(t.Context(), "missing")
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)
}

func TestSessionExpiryFiresOnce(t *testing.T) {
	t.Parallel()

	// TTLs are whole seconds on the wire, so this is the smallest
	// usable expiry
	store := setupSessionStore(t, time.Second)

	var (
		mu      sync.Mutex
		expired []string
	)

	err := store.Create(t.Context(), testSession("abc"), func(s *tag.Session) {
		mu.Lock()
		expired = append(expired, s.ID)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(expired) == 1
	}, 3*time.Second, 20*time.Millisecond)

	// The timeout path claimed the session; nothing is left to claim
	_, err = store.Claim(t.Context(), "abc")
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)
}

func TestSessionClaimCancelsExpiry(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Second)

	var fired sync.Map

	err := store.Create(t.Context(), testSession("abc"), func(s *tag.Session) {
		fired.Store(s.ID, true)
	})
	require.NoError(t, err)

	_, err = store.Claim(t.Context(), "abc")
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, ok := fired.Load("abc")
	assert.False(t, ok)
}
