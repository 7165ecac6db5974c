// Package cooldown implements the posting-cooldown engine: per-channel
// rate limits with role exemptions, level-based duration reduction and
// a global reset on every successful post.
package cooldown

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database/dbretry"
	"github.com/wardenbot/warden/internal/discord/messenger"
	"github.com/wardenbot/warden/internal/settings"
)

const (
	noticeEmbedColor    = 0xE67E22
	violationEmbedColor = 0xE74C3C
)

// levelTierSize is the number of levels per reduction tier.
const levelTierSize = 20

// Message carries the fields of an inbound message the engine needs,
// decoupled from the gateway event type.
type Message struct {
	ID        snowflake.ID
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	AuthorID  snowflake.ID
	RoleIDs   []snowflake.ID
	RoleNames []string
	Bot       bool
	Webhook   bool
	CreatedAt time.Time
}

// ChannelStatus describes a user's cooldown state in one rate-limited
// channel, used by the status command.
type ChannelStatus struct {
	ChannelID string
	Minutes   int
	Expiry    time.Time
	Active    bool
}

// Store is the persistence contract the engine depends on, implemented
// by models.CooldownModel. CheckAndReset carries both the eligibility
// decision and the global-reset write so the store can make the pair
// atomic.
type Store interface {
	CheckAndReset(ctx context.Context, userID, channelID string, at time.Time, newExpiries map[string]time.Time) (bool, error)
	GetUserCooldowns(ctx context.Context, userID string) (map[string]time.Time, error)
	DeleteCooldown(ctx context.Context, userID, channelID string) error
	DeleteUserCooldowns(ctx context.Context, userID string) error
}

// Engine decides whether a user may post in a rate-limited channel and
// applies the side effects of that decision.
type Engine struct {
	store    Store
	settings settings.Service
	msgr     messenger.Messenger
	roles    atomic.Pointer[LevelRoles]
	logger   *zap.Logger
}

// NewEngine creates the cooldown engine. The level-role mapping starts
// empty and is replaced via SetLevelRoles when guild state arrives.
func NewEngine(
	store Store, settingsSvc settings.Service, msgr messenger.Messenger, logger *zap.Logger,
) *Engine {
	e := &Engine{
		store:    store,
		settings: settingsSvc,
		msgr:     msgr,
		logger:   logger.Named("cooldown"),
	}
	e.roles.Store(ParseLevelRoles(nil))

	return e
}

// SetLevelRoles replaces the cached level-role mapping. Called once per
// guild role-set change rather than parsing role names per message.
func (e *Engine) SetLevelRoles(roles *LevelRoles) {
	e.roles.Store(roles)
}

// CheckMessage runs the posting-eligibility algorithm for an inbound
// message. It returns false when the message was a violation, in which
// case the author has been notified and the message deleted. Storage
// faults are returned to the caller with no side effects applied.
func (e *Engine) CheckMessage(ctx context.Context, msg *Message) (bool, error) {
	// Automated identities are never rate limited
	if msg.Bot || msg.Webhook {
		return true, nil
	}

	guildSettings, err := e.settings.Get(ctx, msg.GuildID.String())
	if err != nil {
		return false, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if _, ok := guildSettings.IsCooldownChannel(msg.ChannelID.String()); !ok {
		return true, nil
	}

	if guildSettings.IsExempt(msg.RoleNames, roleIDStrings(msg.RoleIDs)) {
		return true, nil
	}

	reduceBy := Reduction(guildSettings.ReducePerTier, e.roles.Load().Highest(msg.RoleIDs))

	// Posting anywhere resets the clock everywhere: a fresh expiry is
	// written for every rate-limited channel, which discourages
	// channel-hopping to bypass a single channel's limit.
	newExpiries := make(map[string]time.Time, len(guildSettings.CooldownChannels))
	for channelID, minutes := range guildSettings.CooldownChannels {
		newExpiries[channelID] = msg.CreatedAt.Add(Duration(minutes, reduceBy))
	}

	allowed, err := dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		return e.store.CheckAndReset(
			ctx, msg.AuthorID.String(), msg.ChannelID.String(), msg.CreatedAt, newExpiries,
		)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}

	if allowed {
		return true, nil
	}

	e.handleViolation(ctx, msg, guildSettings.LogChannelID, guildSettings.CooldownChannels)

	return false, nil
}

// Status reports the user's cooldown state across every rate-limited
// channel, ordered by channel ID for stable output.
func (e *Engine) Status(ctx context.Context, guildID, userID string) ([]ChannelStatus, error) {
	guildSettings, err := e.settings.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	stored, err := dbretry.Operation(ctx, func(ctx context.Context) (map[string]time.Time, error) {
		return e.store.GetUserCooldowns(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user cooldowns: %w", err)
	}

	now := time.Now()
	statuses := make([]ChannelStatus, 0, len(guildSettings.CooldownChannels))

	for _, channelID := range sortedChannels(guildSettings.CooldownChannels) {
		expiry, ok := stored[channelID]
		statuses = append(statuses, ChannelStatus{
			ChannelID: channelID,
			Minutes:   guildSettings.CooldownChannels[channelID],
			Expiry:    expiry,
			Active:    ok && now.Before(expiry),
		})
	}

	return statuses, nil
}

// Reset clears a user's cooldown in one channel, or in every channel
// when channelID is empty.
func (e *Engine) Reset(ctx context.Context, userID, channelID string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if channelID == "" {
			return e.store.DeleteUserCooldowns(ctx, userID)
		}

		return e.store.DeleteCooldown(ctx, userID, channelID)
	})
}

// Reduction computes the cooldown reduction in minutes earned at the
// given level: reducePerTier minutes for every full 20 levels.
func Reduction(reducePerTier, highestLevel int) int {
	if reducePerTier <= 0 || highestLevel <= 0 {
		return 0
	}

	return reducePerTier * (highestLevel / levelTierSize)
}

// Duration converts a configured cooldown to its effective length
// after reduction. Reductions shorten the wait but never turn it
// negative.
func Duration(minutes, reduceBy int) time.Duration {
	minutes -= reduceBy
	if minutes < 0 {
		minutes = 0
	}

	return time.Duration(minutes) * time.Minute
}

// handleViolation notifies the author, logs to the moderation channel
// and deletes the offending message. Delivery failures are logged but
// never escalate; the message is still removed.
func (e *Engine) handleViolation(
	ctx context.Context, msg *Message, logChannelID string, channels map[string]int,
) {
	info := e.cooldownInfo(ctx, msg, channels)

	notice := discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetTitle("Posting Cooldown").
			SetDescriptionf(
				"Pick the one channel that fits your post best instead of posting in several.\n\n"+
					"You can post again in:\n%s", info).
			SetColor(noticeEmbedColor).
			SetTimestamp(time.Now()).
			Build()).
		Build()

	_, dmErr := e.msgr.SendDM(ctx, msg.AuthorID, notice)
	if dmErr != nil {
		e.logger.Warn("Failed to DM cooldown notice",
			zap.Uint64("user_id", uint64(msg.AuthorID)),
			zap.Error(dmErr))
	}

	e.logViolation(ctx, msg, logChannelID, info, dmErr != nil)

	if err := e.msgr.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
		e.logger.Error("Failed to delete violating message",
			zap.Uint64("message_id", uint64(msg.ID)),
			zap.Error(err))
	}
}

// cooldownInfo builds the per-channel status lines for the violation
// notice using each channel's own stored record.
func (e *Engine) cooldownInfo(ctx context.Context, msg *Message, channels map[string]int) string {
	stored, err := e.store.GetUserCooldowns(ctx, msg.AuthorID.String())
	if err != nil {
		e.logger.Error("Failed to read cooldowns for notice", zap.Error(err))
		stored = map[string]time.Time{}
	}

	lines := make([]string, 0, len(channels))

	for _, channelID := range sortedChannels(channels) {
		expiry, ok := stored[channelID]
		if ok && msg.CreatedAt.Before(expiry) {
			lines = append(lines, fmt.Sprintf("<#%s>: <t:%d:R>", channelID, expiry.Unix()))
		} else {
			lines = append(lines, fmt.Sprintf("<#%s>: no cooldown", channelID))
		}
	}

	return strings.Join(lines, "\n")
}

// logViolation posts the violation to the moderation log channel when
// one is configured.
func (e *Engine) logViolation(
	ctx context.Context, msg *Message, logChannelID, info string, dmFailed bool,
) {
	if logChannelID == "" {
		return
	}

	channelID, err := snowflake.Parse(logChannelID)
	if err != nil {
		e.logger.Error("Invalid log channel ID", zap.String("channel_id", logChannelID), zap.Error(err))
		return
	}

	title := "Cooldown Violation"
	if dmFailed {
		title = "Cooldown Violation | Failed to DM"
	}

	entry := discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetTitle(title).
			SetDescriptionf("<@%d> tried to post in <#%d> while on cooldown:\n\n%s",
				msg.AuthorID, msg.ChannelID, info).
			SetColor(violationEmbedColor).
			SetFooterText(msg.AuthorID.String()).
			SetTimestamp(time.Now()).
			Build()).
		Build()

	if _, err := e.msgr.SendMessage(ctx, channelID, entry); err != nil {
		e.logger.Error("Failed to log cooldown violation", zap.Error(err))
	}
}

func roleIDStrings(ids []snowflake.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

func sortedChannels(channels map[string]int) []string {
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
