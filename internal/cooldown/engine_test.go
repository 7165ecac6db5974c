package cooldown_test

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

	"github.com/wardenbot/warden/internal/cooldown"
	"github.com/wardenbot/warden/internal/database/types"
)

// staticSettings serves a fixed configuration.
type staticSettings struct {
	settings *types.GuildSettings
}

func (s *staticSettings) Get(context.Context, string) (*types.GuildSettings, error) {
	return s.settings, nil
}

func (s *staticSettings) SetCooldownChannel(context.Context, string, string, int) (int, bool, error) {
	return 0, false, nil
}

func (s *staticSettings) RemoveCooldownChannel(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *staticSettings) AddExemptRole(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *staticSettings) RemoveExemptRole(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *staticSettings) SetReducePerTier(context.Context, string, int) error { return nil }
func (s *staticSettings) SetLogChannel(context.Context, string, string) error { return nil }

// nopMessenger satisfies the transport contract for paths that never
// send anything.
type nopMessenger struct{}

func (nopMessenger) SendMessage(
	context.Context, snowflake.ID, discord.MessageCreate,
) (*discord.Message, error) {
	return &discord.Message{}, nil
}

func (nopMessenger) SendDM(
	context.Context, snowflake.ID, discord.MessageCreate,
) (*discord.Message, error) {
	return &discord.Message{}, nil
}

func (nopMessenger) DeleteMessage(context.Context, snowflake.ID, snowflake.ID) error { return nil }

func (nopMessenger) React(context.Context, snowflake.ID, snowflake.ID, string) error { return nil }

// fakeStore grants the first CheckAndReset and records its write set;
// every later call is a violation, like the real store under its lock.
type fakeStore struct {
	mu         sync.Mutex
	onCooldown bool
	expiries   map[string]time.Time
}

func (f *fakeStore) CheckAndReset(
	_ context.Context, _, _ string, _ time.Time, newExpiries map[string]time.Time,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.onCooldown {
		return false, nil
	}

	f.onCooldown = true
	f.expiries = newExpiries

	return true, nil
}

func (f *fakeStore) GetUserCooldowns(context.Context, string) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.expiries, nil
}

func (f *fakeStore) DeleteCooldown(context.Context, string, string) error { return nil }
func (f *fakeStore) DeleteUserCooldowns(context.Context, string) error    { return nil }

func (f *fakeStore) writtenExpiries() map[string]time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.expiries
}

func testMessage() *cooldown.Message {
	return &cooldown.Message{
		ID:        snowflake.ID(10),
		GuildID:   snowflake.ID(1),
		ChannelID: snowflake.ID(100),
		AuthorID:  snowflake.ID(42),
		CreatedAt: time.Now(),
	}
}

func TestCheckMessageSkipsAutomatedAuthors(t *testing.T) {
	t.Parallel()

	engine := cooldown.NewEngine(nil, &staticSettings{}, nopMessenger{}, zap.NewNop())

	msg := testMessage()
	msg.Bot = true

	allowed, err := engine.CheckMessage(t.Context(), msg)
	require.NoError(t, err)
	assert.True(t, allowed)

	msg = testMessage()
	msg.Webhook = true

	allowed, err = engine.CheckMessage(t.Context(), msg)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckMessageIgnoresUnlimitedChannels(t *testing.T) {
	t.Parallel()

	settings := &staticSettings{settings: &types.GuildSettings{
		GuildID:          "1",
		CooldownChannels: map[string]int{"200": 30},
	}}
	engine := cooldown.NewEngine(nil, settings, nopMessenger{}, zap.NewNop())

	allowed, err := engine.CheckMessage(t.Context(), testMessage())
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckMessageAllowsExemptRoles(t *testing.T) {
	t.Parallel()

	settings := &staticSettings{settings: &types.GuildSettings{
		GuildID:          "1",
		CooldownChannels: map[string]int{"100": 30},
		ExemptRoles:      []string{"Moderator"},
	}}
	engine := cooldown.NewEngine(nil, settings, nopMessenger{}, zap.NewNop())

	msg := testMessage()
	msg.RoleNames = []string{"Moderator"}

	allowed, err := engine.CheckMessage(t.Context(), msg)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestReduction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		reducePerTier int
		highestLevel  int
		want          int
	}{
		{name: "no reduction configured", reducePerTier: 0, highestLevel: 40, want: 0},
		{name: "below first tier", reducePerTier: 5, highestLevel: 19, want: 0},
		{name: "first tier", reducePerTier: 5, highestLevel: 20, want: 5},
		{name: "partial tiers floor", reducePerTier: 5, highestLevel: 39, want: 5},
		{name: "two tiers", reducePerTier: 5, highestLevel: 40, want: 10},
		{name: "no level roles", reducePerTier: 5, highestLevel: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cooldown.Reduction(tt.reducePerTier, tt.highestLevel))
		})
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Minute, cooldown.Duration(30, 0))
	assert.Equal(t, 20*time.Minute, cooldown.Duration(30, 10))

	// A reduction larger than the cooldown clamps to zero instead of
	// going negative
	assert.Equal(t, time.Duration(0), cooldown.Duration(30, 45))
}

func TestCheckMessageResetsEveryChannel(t *testing.T) {
	t.Parallel()

	settings := &staticSettings{settings: &types.GuildSettings{
		GuildID:          "1",
		CooldownChannels: map[string]int{"100": 30, "200": 10, "300": 5},
		ReducePerTier:    5,
	}}
	store := &fakeStore{}
	engine := cooldown.NewEngine(store, settings, nopMessenger{}, zap.NewNop())
	engine.SetLevelRoles(cooldown.ParseLevelRoles([]discord.Role{
		{ID: 555, Name: "[Level 40] Regular"},
	}))

	msg := testMessage()
	msg.RoleIDs = []snowflake.ID{555}

	allowed, err := engine.CheckMessage(t.Context(), msg)
	require.NoError(t, err)
	require.True(t, allowed)

	// 40 levels earn two reduction tiers: 10 minutes off every channel,
	// clamped at zero for the shorter ones
	assert.Equal(t, map[string]time.Time{
		"100": msg.CreatedAt.Add(20 * time.Minute),
		"200": msg.CreatedAt,
		"300": msg.CreatedAt,
	}, store.writtenExpiries())
}

func TestCheckMessageConcurrentPostsAllowOne(t *testing.T) {
	t.Parallel()

	settings := &staticSettings{settings: &types.GuildSettings{
		GuildID:          "1",
		CooldownChannels: map[string]int{"100": 30},
	}}
	store := &fakeStore{}
	engine := cooldown.NewEngine(store, settings, nopMessenger{}, zap.NewNop())

	var (
		mu      sync.Mutex
		allowed int
		wg      sync.WaitGroup
	)

	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := engine.CheckMessage(context.Background(), testMessage())
			assert.NoError(t, err)

			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// The eligibility decision lives entirely inside one store call, so
	// two simultaneous first posts cannot both pass
	assert.Equal(t, 1, allowed)
}

func TestCheckMessageAllowsExemptRoleIDs(t *testing.T) {
	t.Parallel()

	settings := &staticSettings{settings: &types.GuildSettings{
		GuildID:          "1",
		CooldownChannels: map[string]int{"100": 30},
		ExemptRoles:      []string{"555"},
	}}
	engine := cooldown.NewEngine(nil, settings, nopMessenger{}, zap.NewNop())

	msg := testMessage()
	msg.RoleIDs = []snowflake.ID{555}

	allowed, err := engine.CheckMessage(t.Context(), msg)
	require.NoError(t, err)
	assert.True(t, allowed)
}
