package tag_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/tag"
)

// fakeMessenger records deliveries so tests can assert on terminal-path
// side effects.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     []snowflake.ID
	deleted  []snowflake.ID
	nextID   snowflake.ID
	failSend bool
}

func (f *fakeMessenger) SendMessage(
	_ context.Context, channelID snowflake.ID, _ discord.MessageCreate,
) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, channelID)
	f.nextID++

	return &discord.Message{ID: f.nextID, ChannelID: channelID}, nil
}

func (f *fakeMessenger) SendDM(
	ctx context.Context, _ snowflake.ID, message discord.MessageCreate,
) (*discord.Message, error) {
	return f.SendMessage(ctx, snowflake.ID(0), message)
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _, messageID snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, messageID)

	return nil
}

func (f *fakeMessenger) React(context.Context, snowflake.ID, snowflake.ID, string) error {
	return nil
}

func (f *fakeMessenger) deletedIDs() []snowflake.ID {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]snowflake.ID(nil), f.deleted...)
}

func TestCancelDeletesPromptAndInvocation(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)
	msgr := &fakeMessenger{}
	resolver := tag.NewResolver(nil, store, msgr, zap.NewNop())

	session := testSession("abc")
	require.NoError(t, store.Create(t.Context(), session, func(*tag.Session) {}))

	require.NoError(t, resolver.Cancel(t.Context(), "abc", session.RequesterID))

	assert.Equal(t,
		[]snowflake.ID{session.PromptMessageID, session.OriginalMessageID},
		msgr.deletedIDs())
}

func TestCancelRejectsStrangers(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)
	msgr := &fakeMessenger{}
	resolver := tag.NewResolver(nil, store, msgr, zap.NewNop())

	session := testSession("abc")
	require.NoError(t, store.Create(t.Context(), session, func(*tag.Session) {}))

	err := resolver.Cancel(t.Context(), "abc", snowflake.ID(999))
	assert.ErrorIs(t, err, tag.ErrNotRequester)

	// A stranger's press must not consume the session
	_, err = store.Peek(t.Context(), "abc")
	require.NoError(t, err)
	assert.Empty(t, msgr.deletedIDs())
}

func TestCancelTerminatesOnce(t *testing.T) {
	t.Parallel()

	store := setupSessionStore(t, time.Minute)
	msgr := &fakeMessenger{}
	resolver := tag.NewResolver(nil, store, msgr, zap.NewNop())

	session := testSession("abc")
	require.NoError(t, store.Create(t.Context(), session, func(*tag.Session) {}))

	require.NoError(t, resolver.Cancel(t.Context(), "abc", session.RequesterID))

	err := resolver.Cancel(t.Context(), "abc", session.RequesterID)
	assert.ErrorIs(t, err, tag.ErrSessionNotFound)
}

func TestSelectCustomIDRoundTrip(t *testing.T) {
	t.Parallel()

	customID := tag.SelectCustomID("session-1", 3)

	sessionID, index, ok := tag.ParseSelectCustomID(customID)
	require.True(t, ok)
	assert.Equal(t, "session-1", sessionID)
	assert.Equal(t, 3, index)

	_, _, ok = tag.ParseSelectCustomID("something_else")
	assert.False(t, ok)

	_, _, ok = tag.ParseSelectCustomID(tag.SelectButtonPrefix + "no-index")
	assert.False(t, ok)
}

func TestCancelCustomIDRoundTrip(t *testing.T) {
	t.Parallel()

	sessionID, ok := tag.ParseCancelCustomID(tag.CancelCustomID("session-1"))
	require.True(t, ok)
	assert.Equal(t, "session-1", sessionID)

	_, ok = tag.ParseCancelCustomID("something_else")
	assert.False(t, ok)
}
