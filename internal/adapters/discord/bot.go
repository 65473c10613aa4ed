package discord

// Package discord adapts the Discord gateway: it serves the slash commands
// that issue verification links and assigns the verified role when the web
// flow reports success through the event channel.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/guildgate/guildgate/internal/events"
)

// auditReason is recorded in the guild's audit log on role assignment.
const auditReason = "Successful verification"

// TokenIssuer issues verification tokens and builds redemption links.
// Satisfied by service.VerificationService.
type TokenIssuer interface {
	IssueToken(userID, guildID string) (string, error)
	VerifyURL(token string) string
}

// gateway is the slice of the Discord REST API the verification handler
// needs. *discordgo.Session satisfies it.
type gateway interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// BotOptions groups dependencies for the Discord bot.
type BotOptions struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string

	// VerifiedRoleName is the exact role name assigned on verification.
	VerifiedRoleName string

	Issuer TokenIssuer
	Events *events.Channel
	Logger *slog.Logger
}

// Bot wraps a discordgo session together with the verification handlers.
type Bot struct {
	session  *discordgo.Session
	gw       gateway
	issuer   TokenIssuer
	roleName string
	logger   *slog.Logger
}

// NewBot creates the bot, wires its gateway handlers, and registers the
// role-assignment handler on the event channel. Call Open to connect.
func NewBot(opts BotOptions) (*Bot, error) {
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		session:  session,
		gw:       session,
		issuer:   opts.Issuer,
		roleName: opts.VerifiedRoleName,
		logger:   logger,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	opts.Events.RegisterHandler(b.handleVerified)

	return b, nil
}

// Open connects to the Discord gateway.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the Discord gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "ping",
		Description: "Replies with pong!",
	},
	{
		Name:        "verify",
		Description: "Begin the verification process",
	},
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.logger.Info("discord gateway ready", "user", s.State.User.Username)

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			b.logger.Error("register command failed", "command", cmd.Name, "error", err)
		}
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "ping":
		b.replyEphemeral(s, i, fmt.Sprintf(":ping_pong: %dms", s.HeartbeatLatency().Milliseconds()))
	case "verify":
		b.handleVerifyCommand(s, i)
	}
}

// handleVerifyCommand issues a token bound to the invoking user and guild
// and replies privately with the redemption link.
func (b *Bot) handleVerifyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		// /verify only makes sense inside a guild.
		return
	}
	userID := i.Member.User.ID

	token, err := b.issuer.IssueToken(userID, i.GuildID)
	if err != nil {
		b.logger.Error("issue verification token failed",
			"user_id", userID, "guild_id", i.GuildID, "error", err)
		b.replyEphemeral(s, i, "There was an error while executing this command!")
		return
	}

	b.replyEphemeral(s, i, b.issuer.VerifyURL(token))
}

func (b *Bot) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction respond failed", "error", err)
	}
}

// handleVerified assigns the verified role after a completed verification.
// Every lookup failure is logged and aborts silently: the web flow already
// told the user they succeeded, so these are operational issues rather than
// user-facing errors.
func (b *Bot) handleVerified(ctx context.Context, v events.Verification) {
	if _, err := b.gw.Guild(v.GuildID); err != nil {
		b.logger.WarnContext(ctx, "verified guild not resolvable",
			"guild_id", v.GuildID, "error", err)
		return
	}

	if _, err := b.gw.GuildMember(v.GuildID, v.UserID); err != nil {
		b.logger.WarnContext(ctx, "verified member not resolvable",
			"user_id", v.UserID, "guild_id", v.GuildID, "error", err)
		return
	}

	roles, err := b.gw.GuildRoles(v.GuildID)
	if err != nil {
		b.logger.WarnContext(ctx, "list guild roles failed",
			"guild_id", v.GuildID, "error", err)
		return
	}

	var roleID string
	for _, role := range roles {
		if role.Name == b.roleName {
			roleID = role.ID
			break
		}
	}
	if roleID == "" {
		b.logger.WarnContext(ctx, "verified role not found in guild",
			"role", b.roleName, "guild_id", v.GuildID)
		return
	}

	err = b.gw.GuildMemberRoleAdd(v.GuildID, v.UserID, roleID,
		discordgo.WithAuditLogReason(auditReason))
	if err != nil {
		b.logger.WarnContext(ctx, "assign verified role failed",
			"user_id", v.UserID, "guild_id", v.GuildID, "role_id", roleID, "error", err)
		return
	}

	b.logger.InfoContext(ctx, "verified role assigned",
		"user_id", v.UserID, "guild_id", v.GuildID, "role_id", roleID)
}
