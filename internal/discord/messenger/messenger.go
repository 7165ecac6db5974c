// Package messenger wraps the Discord REST surface behind the narrow
// transport interface the core components consume, so they never
// depend on the gateway client directly.
package messenger

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// Messenger is the message-delivery contract. SendDM fails when the
// recipient disallows direct messages; callers are expected to catch
// that and fall back to the moderation log.
type Messenger interface {
	SendMessage(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
	SendDM(ctx context.Context, userID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error
	React(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error
}

// Rest implements Messenger on top of the Discord REST client.
type Rest struct {
	rest   rest.Rest
	logger *zap.Logger
}

// NewRest creates a REST-backed messenger.
func NewRest(restClient rest.Rest, logger *zap.Logger) *Rest {
	return &Rest{
		rest:   restClient,
		logger: logger.Named("messenger"),
	}
}

// SendMessage delivers a message to a channel.
func (m *Rest) SendMessage(
	ctx context.Context, channelID snowflake.ID, message discord.MessageCreate,
) (*discord.Message, error) {
	msg, err := m.rest.CreateMessage(channelID, message, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to channel %d: %w", channelID, err)
	}

	return msg, nil
}

// SendDM delivers a private message to a user through their DM channel.
func (m *Rest) SendDM(
	ctx context.Context, userID snowflake.ID, message discord.MessageCreate,
) (*discord.Message, error) {
	channel, err := m.rest.CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create DM channel for user %d: %w", userID, err)
	}

	msg, err := m.rest.CreateMessage(channel.ID(), message, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to DM user %d: %w", userID, err)
	}

	return msg, nil
}

// DeleteMessage removes a message from a channel.
func (m *Rest) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	if err := m.rest.DeleteMessage(channelID, messageID, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %d in channel %d: %w", messageID, channelID, err)
	}

	return nil
}

// React adds a reaction to a message.
func (m *Rest) React(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error {
	if err := m.rest.AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to react to message %d: %w", messageID, err)
	}

	return nil
}
