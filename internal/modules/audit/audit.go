package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	TypeModerator = "Moderator"
	TypeAutomatic = "Automatic"
)

type Author struct {
	Name      string
	AvatarURL string
}

// Entry describes one moderation action for the moderation log channel.
type Entry struct {
	GuildID     string
	Action      string
	Type        string
	Author      Author
	ModeratorID string
	Target      *discordgo.User
	Reason      string
	Color       int
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Logger struct {
	platform  platform.Platform
	store     *storage.Store
	logger    *zap.Logger
	channelID string
	clock     Clock
}

func NewLogger(p platform.Platform, store *storage.Store, logger *zap.Logger, channelID string) *Logger {
	return &Logger{platform: p, store: store, logger: logger, channelID: channelID, clock: realClock{}}
}

func (l *Logger) WithClock(clock Clock) {
	l.clock = clock
}

func (l *Logger) ChannelID() string {
	return l.channelID
}

// Log persists entry as a case and posts its embed to the moderation log
// channel. Only the post can fail the call.
func (l *Logger) Log(ctx context.Context, entry Entry) error {
	now := l.clock.Now()
	targetID := ""
	if entry.Target != nil {
		targetID = entry.Target.ID
	}

	if l.store != nil {
		_, err := l.store.AddCase(ctx, storage.Case{
			GuildID:     entry.GuildID,
			Action:      strings.ToLower(entry.Action),
			ModeratorID: entry.ModeratorID,
			TargetID:    targetID,
			Reason:      entry.Reason,
			Automatic:   entry.Type == TypeAutomatic,
			CreatedAt:   now,
		})
		if err != nil {
			l.logger.Warn("case store failed", zap.String("guild_id", entry.GuildID), zap.String("user_id", targetID), zap.Error(err))
		}
	}
	l.logger.Info("audit", zap.String("type", entry.Type), zap.String("action", entry.Action), zap.String("guild_id", entry.GuildID), zap.String("moderator_id", entry.ModeratorID), zap.String("user_id", targetID), zap.String("reason", entry.Reason))

	if l.channelID == "" {
		l.logger.Warn("moderation log channel not configured")
		return nil
	}
	if err := l.platform.SendEmbed(ctx, l.channelID, BuildEmbed(entry, now)); err != nil {
		return fmt.Errorf("post audit embed: %w", err)
	}
	return nil
}

func BuildEmbed(entry Entry, at time.Time) *discordgo.MessageEmbed {
	username, id := "unknown", "unknown"
	if entry.Target != nil {
		username = entry.Target.String()
		id = entry.Target.ID
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s action: __%s__", entry.Type, entry.Action),
		Color:     entry.Color,
		Author:    &discordgo.MessageEmbedAuthor{Name: entry.Author.Name, IconURL: entry.Author.AvatarURL},
		Timestamp: at.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target's Username", Value: username, Inline: true},
			{Name: "Target's ID", Value: id, Inline: true},
			{Name: "Reason", Value: entry.Reason},
		},
	}
}
