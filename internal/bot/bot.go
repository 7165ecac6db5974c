// Package bot wires the Discord gateway to the cooldown engine, the
// tag resolver and the XP ledger, and hosts the prefix command
// surface.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/cooldown"
	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/discord/messenger"
	"github.com/wardenbot/warden/internal/levels"
	"github.com/wardenbot/warden/internal/redis"
	"github.com/wardenbot/warden/internal/settings"
	"github.com/wardenbot/warden/internal/setup/config"
	"github.com/wardenbot/warden/internal/tag"
)

// Bot owns the gateway connection and dispatches inbound events to the
// core components. Each event is handled in its own goroutine; the
// components carry their own synchronization.
type Bot struct {
	client   bot.Client
	cfg      *config.Bot
	engine   *cooldown.Engine
	tags     *tag.Resolver
	sessions *tag.SessionStore
	levels   *levels.Service
	settings settings.Service
	msgr     messenger.Messenger
	logger   *zap.Logger
}

// New builds the bot and all core components around a configured
// Discord client.
func New(
	token string,
	cfg *config.Bot,
	db database.Client,
	redisManager *redis.Manager,
	logger *zap.Logger,
) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		logger: logger.Named("bot"),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
				gateway.IntentDirectMessages,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagGuilds, cache.FlagRoles, cache.FlagMembers),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildReady:           b.handleGuildReady,
			OnRoleCreate:           b.handleRoleCreate,
			OnRoleUpdate:           b.handleRoleUpdate,
			OnRoleDelete:           b.handleRoleDelete,
			OnMessageCreate:        b.handleMessageCreate,
			OnComponentInteraction: b.handleComponentInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord client: %w", err)
	}

	sessionClient, err := redisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get session Redis client: %w", err)
	}

	b.client = client
	b.msgr = messenger.NewRest(client.Rest(), logger)
	b.settings = settings.New(db, logger)
	b.engine = cooldown.NewEngine(db.Model().Cooldown(), b.settings, b.msgr, logger)
	b.sessions = tag.NewSessionStore(
		sessionClient, time.Duration(cfg.TagSelectTimeout)*time.Second, logger,
	)
	b.tags = tag.NewResolver(db, b.sessions, b.msgr, logger)
	b.levels = levels.NewService(db, logger)

	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	b.logger.Info("Starting bot")
	return b.client.OpenGateway(context.Background())
}

// Close shuts down the gateway connection and cancels pending
// disambiguation timers.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.sessions.Close()
	b.client.Close(context.Background())
}

// handleGuildReady seeds the level-role mapping once the guild's role
// set is cached.
func (b *Bot) handleGuildReady(_ *events.GuildReady) {
	b.refreshLevelRoles()
}

func (b *Bot) handleRoleCreate(_ *events.RoleCreate) { b.refreshLevelRoles() }
func (b *Bot) handleRoleUpdate(_ *events.RoleUpdate) { b.refreshLevelRoles() }
func (b *Bot) handleRoleDelete(_ *events.RoleDelete) { b.refreshLevelRoles() }

// refreshLevelRoles rebuilds the level-role mapping from the role
// cache. Role IDs are globally unique so roles from all guilds share
// one mapping.
func (b *Bot) refreshLevelRoles() {
	var roles []discord.Role

	b.client.Caches().GuildsForEach(func(guild discord.Guild) {
		b.client.Caches().RolesForEach(guild.ID, func(role discord.Role) {
			roles = append(roles, role)
		})
	})

	parsed := cooldown.ParseLevelRoles(roles)
	b.engine.SetLevelRoles(parsed)
	b.logger.Debug("Refreshed level roles", zap.Int("count", parsed.Len()))
}

// handleMessageCreate runs the message pipeline: cooldown enforcement
// first, then either command dispatch or passive XP.
func (b *Bot) handleMessageCreate(event *events.MessageCreate) {
	go func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in message handler", zap.Any("panic", r))
			}

			b.logger.Debug("Message handled",
				zap.Uint64("message_id", uint64(event.MessageID)),
				zap.Duration("duration", time.Since(start)))
		}()

		msg := event.Message
		if event.GuildID == nil || msg.Author.Bot || msg.WebhookID != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		guildID := *event.GuildID
		roleIDs := b.memberRoleIDs(msg)
		roleNames := b.roleNames(guildID, roleIDs)

		allowed, err := b.engine.CheckMessage(ctx, &cooldown.Message{
			ID:        msg.ID,
			GuildID:   guildID,
			ChannelID: msg.ChannelID,
			AuthorID:  msg.Author.ID,
			RoleIDs:   roleIDs,
			RoleNames: roleNames,
			Bot:       msg.Author.Bot,
			Webhook:   msg.WebhookID != nil,
			CreatedAt: msg.CreatedAt,
		})
		if err != nil {
			// Fail open: the message stays when the store is unavailable
			b.logger.Error("Failed to check cooldown", zap.Error(err))
			return
		}

		if !allowed {
			return
		}

		if strings.HasPrefix(msg.Content, b.cfg.Prefix) {
			b.dispatchCommand(ctx, event, guildID, roleIDs, roleNames)
			return
		}

		b.awardExperience(ctx, msg)
	}()
}

// awardExperience credits passive XP for a counted message and
// announces level gains in the channel.
func (b *Bot) awardExperience(ctx context.Context, msg discord.Message) {
	entry, leveled, err := b.levels.Award(ctx, msg.Author.ID.String(), int64(b.cfg.XPPerMessage))
	if err != nil {
		b.logger.Error("Failed to award experience",
			zap.Uint64("user_id", uint64(msg.Author.ID)),
			zap.Error(err))

		return
	}

	if !leveled {
		return
	}

	_, err = b.msgr.SendMessage(ctx, msg.ChannelID, discord.NewMessageCreateBuilder().
		SetContentf("Congratulations <@%d>, you reached level %d!", msg.Author.ID, entry.Level).
		Build())
	if err != nil {
		b.logger.Warn("Failed to announce level up", zap.Error(err))
	}
}

// handleComponentInteraction routes disambiguation button presses to
// the tag resolver.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	go func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component handler", zap.Any("panic", r))
			}

			b.logger.Debug("Component interaction handled",
				zap.String("custom_id", event.Data.CustomID()),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		customID := event.Data.CustomID()

		if sessionID, index, ok := tag.ParseSelectCustomID(customID); ok {
			b.handleTagSelect(ctx, event, sessionID, index)
			return
		}

		if sessionID, ok := tag.ParseCancelCustomID(customID); ok {
			b.handleTagCancel(ctx, event, sessionID)
			return
		}
	}()
}

func (b *Bot) handleTagSelect(
	ctx context.Context, event *events.ComponentInteractionCreate, sessionID string, index int,
) {
	err := b.tags.Select(ctx, sessionID, index, event.User().ID)
	if err != nil {
		b.respondSessionError(event, err)
		return
	}

	// The prompt and invoking message are gone; acknowledge silently
	if err := event.DeferUpdateMessage(); err != nil {
		b.logger.Debug("Failed to acknowledge select", zap.Error(err))
	}
}

func (b *Bot) handleTagCancel(
	ctx context.Context, event *events.ComponentInteractionCreate, sessionID string,
) {
	err := b.tags.Cancel(ctx, sessionID, event.User().ID)
	if err != nil {
		b.respondSessionError(event, err)
		return
	}

	// The prompt is already gone; confirm privately
	err = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent("Tag selection cancelled.").
		SetEphemeral(true).
		Build())
	if err != nil {
		b.logger.Debug("Failed to confirm cancellation", zap.Error(err))
	}
}

// respondSessionError translates resolver errors into ephemeral
// notices. A stranger's press or an expired session never mutates
// anything, so the reply is visible only to the presser.
func (b *Bot) respondSessionError(event *events.ComponentInteractionCreate, err error) {
	var notice string

	switch {
	case errors.Is(err, tag.ErrNotRequester):
		notice = "This prompt belongs to someone else."
	case errors.Is(err, tag.ErrSessionNotFound):
		notice = "This prompt has expired."
	case errors.Is(err, tag.ErrInvalidChoice):
		notice = "That choice is no longer valid."
	default:
		b.logger.Error("Failed to handle tag interaction", zap.Error(err))

		notice = "Something went wrong. Please try again."
	}

	err = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(notice).
		SetEphemeral(true).
		Build())
	if err != nil {
		b.logger.Debug("Failed to send session notice", zap.Error(err))
	}
}

// memberRoleIDs extracts the author's role IDs from the message's
// member payload.
func (b *Bot) memberRoleIDs(msg discord.Message) []snowflake.ID {
	if msg.Member == nil {
		return nil
	}

	return msg.Member.RoleIDs
}

// roleNames resolves role IDs to names through the role cache.
func (b *Bot) roleNames(guildID snowflake.ID, roleIDs []snowflake.ID) []string {
	names := make([]string, 0, len(roleIDs))

	for _, id := range roleIDs {
		if role, ok := b.client.Caches().Role(guildID, id); ok {
			names = append(names, role.Name)
		}
	}

	return names
}

// memberPermissions folds the permissions of the author's roles,
// including the guild's everyone role.
func (b *Bot) memberPermissions(guildID snowflake.ID, roleIDs []snowflake.ID) discord.Permissions {
	perms := discord.PermissionsNone

	// The everyone role shares the guild's ID
	if everyone, ok := b.client.Caches().Role(guildID, guildID); ok {
		perms = perms.Add(everyone.Permissions)
	}

	for _, id := range roleIDs {
		if role, ok := b.client.Caches().Role(guildID, id); ok {
			perms = perms.Add(role.Permissions)
		}
	}

	return perms
}
