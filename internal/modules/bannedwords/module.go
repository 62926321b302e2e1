package bannedwords

import (
	"context"
	"fmt"
	"strings"

	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/moderation"
	"sentinel-modbot/internal/modules/audit"
	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

const automaticAuthor = "Automatic action"

type Module struct {
	platform platform.Platform
	audit    *audit.Logger
	logger   *zap.Logger
	metrics  *metrics.Metrics
	words    config.BannedWords
	folded   []string
	avatar   string
}

func New(p platform.Platform, auditLogger *audit.Logger, logger *zap.Logger, m *metrics.Metrics, words config.BannedWords, avatar string) *Module {
	if m == nil {
		m = metrics.Nop()
	}
	folded := make([]string, len(words))
	for i, word := range words {
		folded[i] = fold(word.Word)
	}
	return &Module{
		platform: p,
		audit:    auditLogger,
		logger:   logger,
		metrics:  m,
		words:    words,
		folded:   folded,
		avatar:   avatar,
	}
}

// Match returns the first configured word contained in content.
func (m *Module) Match(content string) (config.BannedWord, bool) {
	if content == "" {
		return config.BannedWord{}, false
	}
	text := fold(content)
	for i, word := range m.folded {
		if strings.Contains(text, word) {
			return m.words[i], true
		}
	}
	return config.BannedWord{}, false
}

// HandleMessage removes msg when it contains a banned word and records an
// automatic warning. It reports whether the message was acted on.
func (m *Module) HandleMessage(ctx context.Context, msg *discordgo.Message) bool {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return false
	}
	word, ok := m.Match(msg.Content)
	if !ok {
		return false
	}

	m.logger.Info("banned word used",
		zap.String("guild_id", msg.GuildID),
		zap.String("user_id", msg.Author.ID),
		zap.String("word", word.Censored))
	m.metrics.BannedWords.Inc()

	if err := m.platform.Delete(ctx, msg.ChannelID, msg.ID); err != nil {
		m.logger.Warn("delete failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
	// The message is gone, so the warning cannot reference it.
	if err := m.platform.Send(ctx, msg.ChannelID, Warning(msg.Author.ID)); err != nil {
		m.logger.Warn("warning failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}

	err := m.audit.Log(ctx, audit.Entry{
		GuildID: msg.GuildID,
		Action:  moderation.Warn.Title(),
		Type:    audit.TypeAutomatic,
		Author:  audit.Author{Name: automaticAuthor, AvatarURL: m.avatar},
		Target:  msg.Author,
		Reason:  fmt.Sprintf("Used a banned word (%s)", word.Censored),
		Color:   moderation.Warn.Color(),
	})
	if err != nil {
		m.logger.Error("audit post failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
	}
	m.metrics.Actions.WithLabelValues(moderation.Warn.String(), "automatic").Inc()
	return true
}

// Warning is the notice posted in the channel after a message is removed.
func Warning(userID string) string {
	return utils.UserMention(userID) + ", you used a banned word!"
}

func fold(text string) string {
	return cases.Fold().String(text)
}
