package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/bot/constants"
	"github.com/wardenbot/warden/internal/database/models"
	"github.com/wardenbot/warden/internal/levels"
	"github.com/wardenbot/warden/internal/tag"
)

// commandContext carries the parsed invocation through the handlers.
type commandContext struct {
	guildID   snowflake.ID
	channelID snowflake.ID
	messageID snowflake.ID
	authorID  snowflake.ID
	roleIDs   []snowflake.ID
	roleNames []string
}

// dispatchCommand parses a prefixed message and routes it to the
// matching handler. Unknown commands are ignored so the prefix stays
// usable for other bots.
func (b *Bot) dispatchCommand(
	ctx context.Context,
	event *events.MessageCreate,
	guildID snowflake.ID,
	roleIDs []snowflake.ID,
	roleNames []string,
) {
	body := strings.TrimSpace(strings.TrimPrefix(event.Message.Content, b.cfg.Prefix))

	name, rest := splitWord(body)
	if name == "" {
		return
	}

	cmd := &commandContext{
		guildID:   guildID,
		channelID: event.Message.ChannelID,
		messageID: event.MessageID,
		authorID:  event.Message.Author.ID,
		roleIDs:   roleIDs,
		roleNames: roleNames,
	}

	switch strings.ToLower(name) {
	case "tag", "t":
		b.handleTagCommand(ctx, cmd, rest)
	case "cooldown", "cd":
		b.handleCooldownCommand(ctx, cmd, rest)
	case "rank":
		b.handleRank(ctx, cmd, rest)
	case "leaderboard":
		b.handleLeaderboard(ctx, cmd)
	case "resetxp":
		b.handleResetXP(ctx, cmd, rest)
	}
}

// handleTagCommand routes the tag group. A first word that is not a
// known subcommand is treated as the tag name to look up.
func (b *Bot) handleTagCommand(ctx context.Context, cmd *commandContext, args string) {
	sub, rest := splitWord(args)

	switch strings.ToLower(sub) {
	case "":
		b.reply(ctx, cmd, fmt.Sprintf(
			"Usage: `%stag <name>` or `%stag create|edit|delete|list|top`", b.cfg.Prefix, b.cfg.Prefix))
	case "create":
		b.handleTagCreate(ctx, cmd, rest)
	case "edit":
		b.handleTagEdit(ctx, cmd, rest)
	case "delete":
		b.handleTagDelete(ctx, cmd, rest)
	case "list":
		b.handleTagList(ctx, cmd)
	case "top":
		b.handleTagTop(ctx, cmd)
	default:
		err := b.tags.Resolve(ctx, &tag.Request{
			GuildID:     cmd.guildID,
			ChannelID:   cmd.channelID,
			MessageID:   cmd.messageID,
			RequesterID: cmd.authorID,
			Query:       strings.TrimSpace(args),
		})
		if err != nil {
			b.logger.Error("Failed to resolve tag", zap.Error(err))
			b.reply(ctx, cmd, "Something went wrong looking up that tag.")
		}
	}
}

func (b *Bot) handleTagCreate(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireModerator(ctx, cmd) {
		return
	}

	name, content := splitWord(args)
	if name == "" || content == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%stag create <name> <content>`", b.cfg.Prefix))
		return
	}

	err := b.tags.CreateTag(ctx, cmd.guildID, name, content)

	switch {
	case errors.Is(err, models.ErrTagExists):
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` already exists.", name))
	case err != nil:
		b.logger.Error("Failed to create tag", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong creating that tag.")
	default:
		b.ack(ctx, cmd)
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` created.", name))
	}
}

func (b *Bot) handleTagEdit(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireModerator(ctx, cmd) {
		return
	}

	name, content := splitWord(args)
	if name == "" || content == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%stag edit <name> <content>`", b.cfg.Prefix))
		return
	}

	err := b.tags.EditTag(ctx, cmd.guildID, name, content)

	switch {
	case errors.Is(err, models.ErrTagNotFound):
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` does not exist.", name))
	case err != nil:
		b.logger.Error("Failed to edit tag", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong editing that tag.")
	default:
		b.ack(ctx, cmd)
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` updated.", name))
	}
}

func (b *Bot) handleTagDelete(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireModerator(ctx, cmd) {
		return
	}

	name, _ := splitWord(args)
	if name == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%stag delete <name>`", b.cfg.Prefix))
		return
	}

	err := b.tags.DeleteTag(ctx, cmd.guildID, name)

	switch {
	case errors.Is(err, models.ErrTagNotFound):
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` does not exist.", name))
	case err != nil:
		b.logger.Error("Failed to delete tag", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong deleting that tag.")
	default:
		b.ack(ctx, cmd)
		b.reply(ctx, cmd, fmt.Sprintf("Tag `%s` deleted.", name))
	}
}

func (b *Bot) handleTagList(ctx context.Context, cmd *commandContext) {
	names, err := b.tags.ListTagNames(ctx, cmd.guildID)
	if err != nil {
		b.logger.Error("Failed to list tags", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong listing tags.")

		return
	}

	if len(names) == 0 {
		b.reply(ctx, cmd, "This server has no tags yet.")
		return
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitle("Tags").
		SetDescription("`"+strings.Join(names, "`, `")+"`").
		SetColor(constants.DefaultEmbedColor).
		Build())
}

func (b *Bot) handleTagTop(ctx context.Context, cmd *commandContext) {
	tags, err := b.tags.TopTags(ctx, cmd.guildID, constants.TopTagsLimit)
	if err != nil {
		b.logger.Error("Failed to list top tags", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong listing top tags.")

		return
	}

	if len(tags) == 0 {
		b.reply(ctx, cmd, "This server has no tags yet.")
		return
	}

	var lines strings.Builder
	for i, t := range tags {
		fmt.Fprintf(&lines, "%d. `%s` — %d uses\n", i+1, t.Name, t.UseCount)
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitle("Most used tags").
		SetDescription(lines.String()).
		SetColor(constants.DefaultEmbedColor).
		Build())
}

// handleCooldownCommand routes the cooldown group. The bare command
// shows the current configuration.
func (b *Bot) handleCooldownCommand(ctx context.Context, cmd *commandContext, args string) {
	sub, rest := splitWord(args)

	switch strings.ToLower(sub) {
	case "", "config", "show":
		b.handleCooldownConfig(ctx, cmd)
	case "check", "status":
		b.handleCooldownCheck(ctx, cmd, rest)
	case "reset":
		b.handleCooldownReset(ctx, cmd, rest)
	case "addchannel", "set":
		b.handleAddChannel(ctx, cmd, rest)
	case "removechannel":
		b.handleRemoveChannel(ctx, cmd, rest)
	case "addrole":
		b.handleAddRole(ctx, cmd, rest)
	case "removerole":
		b.handleRemoveRole(ctx, cmd, rest)
	case "setreduction":
		b.handleSetReduction(ctx, cmd, rest)
	case "setlog":
		b.handleSetLog(ctx, cmd, rest)
	default:
		b.reply(ctx, cmd, fmt.Sprintf(
			"Usage: `%scooldown config|check|reset|addchannel|removechannel|addrole|removerole|setreduction|setlog`",
			b.cfg.Prefix))
	}
}

func (b *Bot) handleCooldownConfig(ctx context.Context, cmd *commandContext) {
	guildSettings, err := b.settings.Get(ctx, cmd.guildID.String())
	if err != nil {
		b.logger.Error("Failed to get settings", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong reading the configuration.")

		return
	}

	var channels strings.Builder
	for channelID, minutes := range guildSettings.CooldownChannels {
		fmt.Fprintf(&channels, "<#%s> — %d minutes\n", channelID, minutes)
	}

	if channels.Len() == 0 {
		channels.WriteString("none\n")
	}

	exempt := "none"
	if len(guildSettings.ExemptRoles) > 0 {
		exempt = strings.Join(guildSettings.ExemptRoles, ", ")
	}

	logChannel := "not set"
	if guildSettings.LogChannelID != "" {
		logChannel = fmt.Sprintf("<#%s>", guildSettings.LogChannelID)
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitle("Cooldown configuration").
		AddField("Rate-limited channels", channels.String(), false).
		AddField("Exempt roles", exempt, false).
		AddField("Reduction per 20 levels", fmt.Sprintf("%d minutes", guildSettings.ReducePerTier), true).
		AddField("Log channel", logChannel, true).
		SetColor(constants.DefaultEmbedColor).
		Build())
}

func (b *Bot) handleCooldownCheck(ctx context.Context, cmd *commandContext, args string) {
	target := cmd.authorID

	if arg, _ := splitWord(args); arg != "" {
		// Inspecting someone else's cooldowns is a moderator action
		if !b.requireModerator(ctx, cmd) {
			return
		}

		id, err := parseSnowflakeArg(arg)
		if err != nil {
			b.reply(ctx, cmd, "That doesn't look like a user.")
			return
		}

		target = id
	}

	statuses, err := b.engine.Status(ctx, cmd.guildID.String(), target.String())
	if err != nil {
		b.logger.Error("Failed to get cooldown status", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong checking cooldowns.")

		return
	}

	if len(statuses) == 0 {
		b.reply(ctx, cmd, "No rate-limited channels are configured.")
		return
	}

	var lines strings.Builder
	for _, status := range statuses {
		if status.Active {
			fmt.Fprintf(&lines, "<#%s>: on cooldown until <t:%d:R>\n", status.ChannelID, status.Expiry.Unix())
		} else {
			fmt.Fprintf(&lines, "<#%s>: no cooldown\n", status.ChannelID)
		}
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitlef("Cooldown status for %s", target).
		SetDescription(lines.String()).
		SetColor(constants.DefaultEmbedColor).
		Build())
}

func (b *Bot) handleCooldownReset(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireModerator(ctx, cmd) {
		return
	}

	userArg, channelArg := splitWord(args)
	if userArg == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown reset <user> [channel]`", b.cfg.Prefix))
		return
	}

	userID, err := parseSnowflakeArg(userArg)
	if err != nil {
		b.reply(ctx, cmd, "That doesn't look like a user.")
		return
	}

	var channelID string

	if arg, _ := splitWord(channelArg); arg != "" {
		id, err := parseSnowflakeArg(arg)
		if err != nil {
			b.reply(ctx, cmd, "That doesn't look like a channel.")
			return
		}

		channelID = id.String()
	}

	if err := b.engine.Reset(ctx, userID.String(), channelID); err != nil {
		b.logger.Error("Failed to reset cooldown", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong resetting the cooldown.")

		return
	}

	if channelID == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Cleared all cooldowns for <@%d>.", userID))
		b.logAdminAction(ctx, cmd, fmt.Sprintf("cleared all cooldowns for <@%d>", userID))
	} else {
		b.reply(ctx, cmd, fmt.Sprintf("Cleared the <#%s> cooldown for <@%d>.", channelID, userID))
		b.logAdminAction(ctx, cmd, fmt.Sprintf("cleared the <#%s> cooldown for <@%d>", channelID, userID))
	}
}

func (b *Bot) handleAddChannel(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	channelArg, minutesArg := splitWord(args)

	minutesWord, _ := splitWord(minutesArg)

	channelID, err := parseSnowflakeArg(channelArg)
	if err != nil {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown addchannel <channel> <minutes>`", b.cfg.Prefix))
		return
	}

	minutes, err := strconv.Atoi(minutesWord)
	if err != nil || minutes <= 0 {
		b.reply(ctx, cmd, "The cooldown duration must be a positive number of minutes.")
		return
	}

	prev, existed, err := b.settings.SetCooldownChannel(ctx, cmd.guildID.String(), channelID.String(), minutes)
	if err != nil {
		b.logger.Error("Failed to set cooldown channel", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	if existed {
		b.reply(ctx, cmd, fmt.Sprintf(
			"Updated <#%d> from %d to %d minutes.", channelID, prev, minutes))
		b.logAdminAction(ctx, cmd, fmt.Sprintf(
			"changed the <#%d> cooldown from %d to %d minutes", channelID, prev, minutes))
	} else {
		b.reply(ctx, cmd, fmt.Sprintf(
			"Added <#%d> with a %d minute cooldown.", channelID, minutes))
		b.logAdminAction(ctx, cmd, fmt.Sprintf(
			"added <#%d> with a %d minute cooldown", channelID, minutes))
	}
}

func (b *Bot) handleRemoveChannel(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	channelArg, _ := splitWord(args)

	channelID, err := parseSnowflakeArg(channelArg)
	if err != nil {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown removechannel <channel>`", b.cfg.Prefix))
		return
	}

	removed, err := b.settings.RemoveCooldownChannel(ctx, cmd.guildID.String(), channelID.String())
	if err != nil {
		b.logger.Error("Failed to remove cooldown channel", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	if removed {
		b.reply(ctx, cmd, fmt.Sprintf("<#%d> is no longer rate limited.", channelID))
		b.logAdminAction(ctx, cmd, fmt.Sprintf("removed the cooldown on <#%d>", channelID))
	} else {
		b.reply(ctx, cmd, fmt.Sprintf("<#%d> was not rate limited.", channelID))
	}
}

func (b *Bot) handleAddRole(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	role := strings.TrimSpace(args)
	if role == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown addrole <role name or mention>`", b.cfg.Prefix))
		return
	}

	role = normalizeRoleArg(role)

	added, err := b.settings.AddExemptRole(ctx, cmd.guildID.String(), role)
	if err != nil {
		b.logger.Error("Failed to add exempt role", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	if added {
		b.reply(ctx, cmd, fmt.Sprintf("Role `%s` is now exempt from cooldowns.", role))
		b.logAdminAction(ctx, cmd, fmt.Sprintf("made role `%s` exempt from cooldowns", role))
	} else {
		b.reply(ctx, cmd, fmt.Sprintf("Role `%s` was already exempt.", role))
	}
}

func (b *Bot) handleRemoveRole(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	role := strings.TrimSpace(args)
	if role == "" {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown removerole <role name or mention>`", b.cfg.Prefix))
		return
	}

	role = normalizeRoleArg(role)

	removed, err := b.settings.RemoveExemptRole(ctx, cmd.guildID.String(), role)
	if err != nil {
		b.logger.Error("Failed to remove exempt role", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	if removed {
		b.reply(ctx, cmd, fmt.Sprintf("Role `%s` is no longer exempt.", role))
		b.logAdminAction(ctx, cmd, fmt.Sprintf("removed the cooldown exemption for role `%s`", role))
	} else {
		b.reply(ctx, cmd, fmt.Sprintf("Role `%s` was not exempt.", role))
	}
}

func (b *Bot) handleSetReduction(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	arg, _ := splitWord(args)

	minutes, err := strconv.Atoi(arg)
	if err != nil || minutes < 0 {
		b.reply(ctx, cmd, "The reduction must be a non-negative number of minutes.")
		return
	}

	if err := b.settings.SetReducePerTier(ctx, cmd.guildID.String(), minutes); err != nil {
		b.logger.Error("Failed to set reduction", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	b.reply(ctx, cmd, fmt.Sprintf("Cooldowns now shrink by %d minutes per 20 levels.", minutes))
	b.logAdminAction(ctx, cmd, fmt.Sprintf("set the level reduction to %d minutes per 20 levels", minutes))
}

func (b *Bot) handleSetLog(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	channelArg, _ := splitWord(args)

	channelID, err := parseSnowflakeArg(channelArg)
	if err != nil {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%scooldown setlog <channel>`", b.cfg.Prefix))
		return
	}

	if err := b.settings.SetLogChannel(ctx, cmd.guildID.String(), channelID.String()); err != nil {
		b.logger.Error("Failed to set log channel", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong updating the configuration.")

		return
	}

	b.reply(ctx, cmd, fmt.Sprintf("Violations will be logged to <#%d>.", channelID))
	b.logAdminAction(ctx, cmd, fmt.Sprintf("set the moderation log channel to <#%d>", channelID))
}

func (b *Bot) handleRank(ctx context.Context, cmd *commandContext, args string) {
	target := cmd.authorID

	if arg, _ := splitWord(args); arg != "" {
		id, err := parseSnowflakeArg(arg)
		if err != nil {
			b.reply(ctx, cmd, "That doesn't look like a user.")
			return
		}

		target = id
	}

	entry, err := b.levels.Progression(ctx, target.String())
	if err != nil {
		b.logger.Error("Failed to get progression", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong reading the ledger.")

		return
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitle("Rank").
		SetDescriptionf("<@%d> is level %d with %d/%d XP (%d XP to the next level).",
			target, entry.Level, entry.Experience, levels.Threshold(entry.Level),
			levels.ToNext(entry.Level, entry.Experience)).
		SetColor(constants.DefaultEmbedColor).
		Build())
}

func (b *Bot) handleLeaderboard(ctx context.Context, cmd *commandContext) {
	entries, err := b.levels.Leaderboard(ctx, constants.LeaderboardLimit)
	if err != nil {
		b.logger.Error("Failed to get leaderboard", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong reading the ledger.")

		return
	}

	if len(entries) == 0 {
		b.reply(ctx, cmd, "Nobody has earned any XP yet.")
		return
	}

	var lines strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&lines, "%d. <@%s> — level %d (%d XP)\n",
			i+1, entry.UserID, entry.Level, entry.Experience)
	}

	b.replyEmbed(ctx, cmd, discord.NewEmbedBuilder().
		SetTitle("Leaderboard").
		SetDescription(lines.String()).
		SetColor(constants.DefaultEmbedColor).
		Build())
}

func (b *Bot) handleResetXP(ctx context.Context, cmd *commandContext, args string) {
	if !b.requireAdmin(ctx, cmd) {
		return
	}

	arg, _ := splitWord(args)

	userID, err := parseSnowflakeArg(arg)
	if err != nil {
		b.reply(ctx, cmd, fmt.Sprintf("Usage: `%sresetxp <user>`", b.cfg.Prefix))
		return
	}

	if err := b.levels.Reset(ctx, userID.String()); err != nil {
		b.logger.Error("Failed to reset progression", zap.Error(err))
		b.reply(ctx, cmd, "Something went wrong resetting the ledger.")

		return
	}

	b.reply(ctx, cmd, fmt.Sprintf("Reset progression for <@%d>.", userID))
	b.logAdminAction(ctx, cmd, fmt.Sprintf("reset the XP progression of <@%d>", userID))
}

// requireModerator gates a command behind the manage-messages
// permission. Holders of a cooldown-exempt role qualify too, since
// those are the guild's staff roles.
func (b *Bot) requireModerator(ctx context.Context, cmd *commandContext) bool {
	perms := b.memberPermissions(cmd.guildID, cmd.roleIDs)
	if perms.Has(discord.PermissionAdministrator) || perms.Has(discord.PermissionManageMessages) {
		return true
	}

	guildSettings, err := b.settings.Get(ctx, cmd.guildID.String())
	if err != nil {
		b.logger.Error("Failed to get settings for permission check", zap.Error(err))
	} else if guildSettings.IsExempt(cmd.roleNames, roleIDStrings(cmd.roleIDs)) {
		return true
	}

	b.reply(ctx, cmd, "You need the Manage Messages permission for that.")

	return false
}

// requireAdmin gates a command behind the manage-guild permission.
func (b *Bot) requireAdmin(ctx context.Context, cmd *commandContext) bool {
	perms := b.memberPermissions(cmd.guildID, cmd.roleIDs)
	if perms.Has(discord.PermissionAdministrator) || perms.Has(discord.PermissionManageGuild) {
		return true
	}

	b.reply(ctx, cmd, "You need the Manage Server permission for that.")

	return false
}

func (b *Bot) reply(ctx context.Context, cmd *commandContext, content string) {
	_, err := b.msgr.SendMessage(ctx, cmd.channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		SetMessageReferenceByID(cmd.messageID).
		Build())
	if err != nil {
		b.logger.Warn("Failed to send reply", zap.Error(err))
	}
}

// ack marks the invoking message with a confirmation reaction.
func (b *Bot) ack(ctx context.Context, cmd *commandContext) {
	if err := b.msgr.React(ctx, cmd.channelID, cmd.messageID, "✅"); err != nil {
		b.logger.Debug("Failed to add confirmation reaction", zap.Error(err))
	}
}

func (b *Bot) replyEmbed(ctx context.Context, cmd *commandContext, embed discord.Embed) {
	_, err := b.msgr.SendMessage(ctx, cmd.channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		SetMessageReferenceByID(cmd.messageID).
		Build())
	if err != nil {
		b.logger.Warn("Failed to send reply", zap.Error(err))
	}
}

// logAdminAction records a configuration change to the moderation log
// channel when one is configured. Failures only log; the change itself
// already succeeded.
func (b *Bot) logAdminAction(ctx context.Context, cmd *commandContext, description string) {
	guildSettings, err := b.settings.Get(ctx, cmd.guildID.String())
	if err != nil || guildSettings.LogChannelID == "" {
		return
	}

	channelID, err := snowflake.Parse(guildSettings.LogChannelID)
	if err != nil {
		return
	}

	_, err = b.msgr.SendMessage(ctx, channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetTitle("Configuration changed").
			SetDescriptionf("<@%d> %s", cmd.authorID, description).
			SetColor(constants.DefaultEmbedColor).
			Build()).
		Build())
	if err != nil {
		b.logger.Warn("Failed to log admin action", zap.Error(err))
	}
}

func roleIDStrings(ids []snowflake.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

// splitWord splits the first whitespace-delimited word off a string
// and returns it with the trimmed remainder.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}

	return s, ""
}

// parseSnowflakeArg accepts a raw ID or a channel/user/role mention.
func parseSnowflakeArg(s string) (snowflake.ID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimLeft(s, "#@&!")

	return snowflake.Parse(s)
}

// normalizeRoleArg turns a role mention into its raw ID and leaves
// plain names untouched, so exemptions can be stored either way.
func normalizeRoleArg(s string) string {
	if strings.HasPrefix(s, "<@&") && strings.HasSuffix(s, ">") {
		if id, err := parseSnowflakeArg(s); err == nil {
			return id.String()
		}
	}

	return s
}
