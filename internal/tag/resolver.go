// Package tag implements the guild-scoped tag system: exact lookup,
// fuzzy matching against known names and the interactive
// disambiguation flow for near misses.
package tag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/database/dbretry"
	"github.com/wardenbot/warden/internal/database/models"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/internal/discord/messenger"
)

const (
	// SelectButtonPrefix starts the custom ID of a candidate button.
	SelectButtonPrefix = "tag_select:"
	// CancelButtonPrefix starts the custom ID of the cancel button.
	CancelButtonPrefix = "tag_cancel:"

	promptEmbedColor = 0x3498DB
)

var (
	// ErrNotRequester is returned when someone other than the user who
	// triggered the prompt presses one of its buttons.
	ErrNotRequester = errors.New("prompt belongs to another user")
	// ErrInvalidChoice is returned when a button index is out of range
	// for the session's candidate list.
	ErrInvalidChoice = errors.New("invalid candidate choice")
)

// Request carries the fields of a tag invocation.
type Request struct {
	GuildID     snowflake.ID
	ChannelID   snowflake.ID
	MessageID   snowflake.ID
	RequesterID snowflake.ID
	Query       string
}

// Resolver looks up tags and drives the disambiguation flow when the
// requested name has no exact match.
type Resolver struct {
	db       database.Client
	sessions *SessionStore
	msgr     messenger.Messenger
	logger   *zap.Logger
}

// NewResolver creates the tag resolver.
func NewResolver(
	db database.Client, sessions *SessionStore, msgr messenger.Messenger, logger *zap.Logger,
) *Resolver {
	return &Resolver{
		db:       db,
		sessions: sessions,
		msgr:     msgr,
		logger:   logger.Named("tag"),
	}
}

// Resolve handles a tag invocation end to end. An exact name match
// posts the tag content immediately. A miss falls back to fuzzy
// matching; close names open an interactive prompt, no close names
// produce a not-found reply.
func (r *Resolver) Resolve(ctx context.Context, req *Request) error {
	content, err := dbretry.Operation(ctx, func(ctx context.Context) (string, error) {
		return r.db.Model().Tag().GetTag(ctx, req.GuildID.String(), req.Query)
	})

	switch {
	case err == nil:
		return r.deliver(ctx, req.GuildID, req.ChannelID, req.Query, content)
	case !errors.Is(err, models.ErrTagNotFound):
		return fmt.Errorf("failed to look up tag: %w", err)
	}

	names, err := dbretry.Operation(ctx, func(ctx context.Context) ([]string, error) {
		return r.db.Model().Tag().ListTagNames(ctx, req.GuildID.String())
	})
	if err != nil {
		return fmt.Errorf("failed to list tag names: %w", err)
	}

	candidates := CloseMatches(req.Query, names, MaxCandidates, SimilarityCutoff)
	if len(candidates) == 0 {
		_, err := r.msgr.SendMessage(ctx, req.ChannelID, discord.NewMessageCreateBuilder().
			SetContentf("Tag `%s` not found.", req.Query).
			Build())

		return err
	}

	return r.openPrompt(ctx, req, candidates)
}

// Select resolves a candidate button press. Only the original
// requester may choose; the first terminal path to claim the session
// wins. On success the chosen tag is posted and both the prompt and
// the invoking message are removed.
func (r *Resolver) Select(
	ctx context.Context, sessionID string, index int, userID snowflake.ID,
) error {
	session, err := r.claimFor(ctx, sessionID, userID)
	if err != nil {
		return err
	}

	if index < 0 || index >= len(session.Candidates) {
		return ErrInvalidChoice
	}

	name := session.Candidates[index]

	content, err := dbretry.Operation(ctx, func(ctx context.Context) (string, error) {
		return r.db.Model().Tag().GetTag(ctx, session.GuildID.String(), name)
	})
	if err != nil {
		return fmt.Errorf("failed to get selected tag: %w", err)
	}

	if err := r.deliver(ctx, session.GuildID, session.ChannelID, name, content); err != nil {
		return err
	}

	r.deleteMessage(ctx, session.ChannelID, session.PromptMessageID, "prompt")
	r.deleteMessage(ctx, session.ChannelID, session.OriginalMessageID, "invocation")

	return nil
}

// Cancel resolves a cancel button press. The invoking message is
// removed, and the prompt goes with it rather than staying behind with
// dead buttons; the caller confirms privately.
func (r *Resolver) Cancel(ctx context.Context, sessionID string, userID snowflake.ID) error {
	session, err := r.claimFor(ctx, sessionID, userID)
	if err != nil {
		return err
	}

	r.deleteMessage(ctx, session.ChannelID, session.PromptMessageID, "prompt")
	r.deleteMessage(ctx, session.ChannelID, session.OriginalMessageID, "invocation")

	return nil
}

// CreateTag stores a new tag.
func (r *Resolver) CreateTag(ctx context.Context, guildID snowflake.ID, name, content string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.Model().Tag().CreateTag(ctx, guildID.String(), name, content)
	})
}

// EditTag replaces the content of an existing tag.
func (r *Resolver) EditTag(ctx context.Context, guildID snowflake.ID, name, content string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.Model().Tag().EditTag(ctx, guildID.String(), name, content)
	})
}

// DeleteTag removes an existing tag.
func (r *Resolver) DeleteTag(ctx context.Context, guildID snowflake.ID, name string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.Model().Tag().DeleteTag(ctx, guildID.String(), name)
	})
}

// ListTagNames returns every tag name in the guild.
func (r *Resolver) ListTagNames(ctx context.Context, guildID snowflake.ID) ([]string, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]string, error) {
		return r.db.Model().Tag().ListTagNames(ctx, guildID.String())
	})
}

// TopTags returns up to limit tags ordered by use count.
func (r *Resolver) TopTags(ctx context.Context, guildID snowflake.ID, limit int) ([]types.Tag, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]types.Tag, error) {
		return r.db.Model().Tag().ListTopTags(ctx, guildID.String(), limit)
	})
}

// claimFor verifies the interacting user against the session's
// requester before claiming. The peek is non-claiming so a stranger's
// press leaves the session alive for its owner.
func (r *Resolver) claimFor(ctx context.Context, sessionID string, userID snowflake.ID) (*Session, error) {
	session, err := r.sessions.Peek(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.RequesterID != userID {
		return nil, ErrNotRequester
	}

	return r.sessions.Claim(ctx, sessionID)
}

// deliver posts the tag content and bumps its use counter. The counter
// update is best effort; a failed bump never blocks delivery.
func (r *Resolver) deliver(
	ctx context.Context, guildID, channelID snowflake.ID, name, content string,
) error {
	if _, err := r.msgr.SendMessage(ctx, channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build()); err != nil {
		return fmt.Errorf("failed to post tag content: %w", err)
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.Model().Tag().IncrementTagUse(ctx, guildID.String(), name)
	})
	if err != nil {
		r.logger.Warn("Failed to increment tag use",
			zap.String("tag", name),
			zap.Error(err))
	}

	return nil
}

// openPrompt sends the disambiguation prompt and registers the session
// with its expiry timer.
func (r *Resolver) openPrompt(ctx context.Context, req *Request, candidates []string) error {
	sessionID := uuid.New().String()

	buttons := make([]discord.InteractiveComponent, 0, len(candidates))
	for i, name := range candidates {
		buttons = append(buttons, discord.NewPrimaryButton(name, SelectCustomID(sessionID, i)))
	}

	var lines strings.Builder
	for i, name := range candidates {
		fmt.Fprintf(&lines, "%d. `%s`\n", i+1, name)
	}

	prompt, err := r.msgr.SendMessage(ctx, req.ChannelID, discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetTitle("Tag not found").
			SetDescriptionf("No tag named `%s`. Did you mean one of these?\n\n%s", req.Query, lines.String()).
			SetColor(promptEmbedColor).
			SetFooterTextf("Expires in %d seconds", int(r.sessions.TTL()/time.Second)).
			Build()).
		AddActionRow(buttons...).
		AddActionRow(discord.NewDangerButton("Cancel", CancelCustomID(sessionID))).
		Build())
	if err != nil {
		return fmt.Errorf("failed to send disambiguation prompt: %w", err)
	}

	session := &Session{
		ID:                sessionID,
		GuildID:           req.GuildID,
		ChannelID:         req.ChannelID,
		RequesterID:       req.RequesterID,
		OriginalMessageID: req.MessageID,
		PromptMessageID:   prompt.ID,
		Candidates:        candidates,
		CreatedAt:         time.Now(),
	}

	err = r.sessions.Create(ctx, session, func(expired *Session) {
		expireCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r.deleteMessage(expireCtx, expired.ChannelID, expired.PromptMessageID, "expired prompt")

		if _, err := r.msgr.SendMessage(expireCtx, expired.ChannelID, discord.NewMessageCreateBuilder().
			SetContentf("<@%d> Tag selection timed out.", expired.RequesterID).
			Build()); err != nil {
			r.logger.Warn("Failed to send timeout notice", zap.Error(err))
		}
	})
	if err != nil {
		// The prompt is already visible; remove it rather than leave
		// dead buttons behind
		r.deleteMessage(ctx, req.ChannelID, prompt.ID, "orphaned prompt")

		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *Resolver) deleteMessage(ctx context.Context, channelID, messageID snowflake.ID, kind string) {
	if err := r.msgr.DeleteMessage(ctx, channelID, messageID); err != nil {
		r.logger.Warn("Failed to delete message",
			zap.String("kind", kind),
			zap.Uint64("messageID", uint64(messageID)),
			zap.Error(err))
	}
}

// SelectCustomID builds the custom ID for a candidate button.
func SelectCustomID(sessionID string, index int) string {
	return SelectButtonPrefix + sessionID + ":" + strconv.Itoa(index)
}

// CancelCustomID builds the custom ID for the cancel button.
func CancelCustomID(sessionID string) string {
	return CancelButtonPrefix + sessionID
}

// ParseSelectCustomID extracts the session ID and candidate index from
// a candidate button's custom ID.
func ParseSelectCustomID(customID string) (string, int, bool) {
	rest, ok := strings.CutPrefix(customID, SelectButtonPrefix)
	if !ok {
		return "", 0, false
	}

	sessionID, indexStr, ok := strings.Cut(rest, ":")
	if !ok {
		return "", 0, false
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return "", 0, false
	}

	return sessionID, index, true
}

// ParseCancelCustomID extracts the session ID from the cancel button's
// custom ID.
func ParseCancelCustomID(customID string) (string, bool) {
	return strings.CutPrefix(customID, CancelButtonPrefix)
}
