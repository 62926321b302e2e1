package moderation

import (
	"context"
	"errors"
	"fmt"

	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/modules/audit"
	"sentinel-modbot/internal/platform"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var ErrBanStateUnknown = errors.New("ban state unknown")

type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeDenied
	OutcomeInvalidTarget
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeDenied:
		return "denied"
	case OutcomeInvalidTarget:
		return "invalid_target"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Executor struct {
	platform platform.Platform
	audit    *audit.Logger
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewExecutor(p platform.Platform, auditLogger *audit.Logger, logger *zap.Logger, m *metrics.Metrics) *Executor {
	if m == nil {
		m = metrics.Nop()
	}
	return &Executor{platform: p, audit: auditLogger, logger: logger, metrics: m}
}

// Execute carries out req on behalf of the author of msg. The returned error
// is only set for failures the invoker has not already been told about.
func (e *Executor) Execute(ctx context.Context, msg *discordgo.Message, req Request) (Outcome, error) {
	perms, err := e.platform.ChannelPermissions(ctx, req.Invoker.ID, msg.ChannelID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("channel permissions: %w", err)
	}
	if perms&req.Permission != req.Permission {
		e.logger.Info("moderation denied",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", req.Invoker.ID),
			zap.String("action", req.Kind.String()))
		e.reply(ctx, msg, fmt.Sprintf("You're missing the `%s` permission required for that command.", PermissionName(req.Permission)))
		return OutcomeDenied, nil
	}

	target, err := e.platform.User(ctx, req.Target)
	if err != nil {
		e.logger.Warn("target lookup failed", zap.String("user_id", req.Target), zap.Error(err))
		e.reply(ctx, msg, fmt.Sprintf("Something went wrong. Is `%s` a valid user?", req.Target))
		return OutcomeInvalidTarget, nil
	}

	if err := e.mutate(ctx, msg.GuildID, req); err != nil {
		e.logger.Error("moderation action failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", req.Target),
			zap.String("action", req.Kind.String()),
			zap.Error(err))
		e.reply(ctx, msg, fmt.Sprintf("I couldn't %s `%s`.", req.Kind, req.Target))
		return OutcomeFailed, nil
	}
	e.metrics.Actions.WithLabelValues(req.Kind.String(), "moderator").Inc()

	entry := audit.Entry{
		GuildID:     msg.GuildID,
		Action:      req.Kind.Title(),
		Type:        audit.TypeModerator,
		Author:      audit.Author{Name: req.Invoker.String(), AvatarURL: req.Invoker.AvatarURL("")},
		ModeratorID: req.Invoker.ID,
		Target:      target,
		Reason:      req.Reason,
		Color:       req.Color,
	}
	if err := e.audit.Log(ctx, entry); err != nil {
		e.logger.Error("audit post failed", zap.String("guild_id", msg.GuildID), zap.String("action", req.Kind.String()), zap.Error(err))
	}

	e.reply(ctx, msg, fmt.Sprintf("Successfully performed action `%s` on user `%s` and logged a message to <#%s>.", req.Kind, req.Target, e.audit.ChannelID()))
	return OutcomeDone, nil
}

func (e *Executor) mutate(ctx context.Context, guildID string, req Request) error {
	switch req.Kind {
	case Kick:
		return e.platform.Kick(ctx, guildID, req.Target, req.Reason)
	case Ban:
		return e.platform.Ban(ctx, guildID, req.Target, req.Reason)
	case Unban:
		return e.platform.Unban(ctx, guildID, req.Target)
	case Warn:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRequest, req.Kind)
	}
}

// IsBanned reports whether userID is on the guild's ban list.
func (e *Executor) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	bans, err := e.platform.Bans(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBanStateUnknown, err)
	}
	for _, ban := range bans {
		if ban.User != nil && ban.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (e *Executor) reply(ctx context.Context, msg *discordgo.Message, content string) {
	if err := e.platform.Reply(ctx, msg, content); err != nil {
		e.logger.Warn("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}
