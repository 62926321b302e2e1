package messagelog

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/modules/audit"
	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/utils"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	TypeNew     = "New message"
	TypeEdited  = "Edited message"
	TypeDeleted = "Deleted message"

	notCached = "(not cached)"

	// Layout of the member join/leave timestamps.
	utcLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
)

type record struct {
	Message messageRecord `toml:"message"`
}

type messageRecord struct {
	Type        string            `toml:"type"`
	Author      string            `toml:"author"`
	AuthorID    string            `toml:"author_id"`
	Channel     string            `toml:"channel"`
	URL         string            `toml:"url"`
	Content     string            `toml:"content"`
	Attachments attachmentsRecord `toml:"attachments"`
}

type editRecord struct {
	Message editMessageRecord `toml:"message"`
}

type editMessageRecord struct {
	Type     string        `toml:"type"`
	Author   string        `toml:"author"`
	AuthorID string        `toml:"author_id"`
	Channel  string        `toml:"channel"`
	URL      string        `toml:"url"`
	Old      contentRecord `toml:"old"`
	New      contentRecord `toml:"new"`
}

type contentRecord struct {
	Content string `toml:"content"`
}

type attachmentsRecord struct {
	HasAttachments bool     `toml:"has_attachments"`
	URLs           []string `toml:"urls,omitempty"`
}

// Logger posts guild message lifecycle records to the message log channel
// and member arrivals and departures to the user log channel.
type Logger struct {
	platform       platform.Platform
	logger         *zap.Logger
	metrics        *metrics.Metrics
	prefix         string
	messageChannel string
	userChannel    string
	clock          audit.Clock

	mu     sync.RWMutex
	selfID string
}

func New(p platform.Platform, logger *zap.Logger, m *metrics.Metrics, prefix, messageChannel, userChannel, selfID string) *Logger {
	if m == nil {
		m = metrics.Nop()
	}
	return &Logger{
		platform:       p,
		logger:         logger,
		metrics:        m,
		prefix:         prefix,
		messageChannel: messageChannel,
		userChannel:    userChannel,
		clock:          systemClock{},
		selfID:         selfID,
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (l *Logger) WithClock(clock audit.Clock) {
	l.clock = clock
}

// SetSelfID records the bot's own user ID once the gateway reports it.
func (l *Logger) SetSelfID(id string) {
	l.mu.Lock()
	l.selfID = id
	l.mu.Unlock()
}

func (l *Logger) isSelf(user *discordgo.User) bool {
	if user == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selfID != "" && user.ID == l.selfID
}

func (l *Logger) MessageCreated(ctx context.Context, msg *discordgo.Message) {
	if msg == nil || msg.Author == nil || msg.GuildID == "" || l.isSelf(msg.Author) {
		return
	}
	if strings.HasPrefix(msg.Content, l.prefix) {
		return
	}
	l.post(ctx, TypeNew, record{Message: l.messageRecord(TypeNew, msg)})
}

func (l *Logger) MessageUpdated(ctx context.Context, update *discordgo.MessageUpdate) {
	if update == nil || update.Message == nil || update.GuildID == "" {
		return
	}
	before := update.BeforeUpdate
	// Uncached updates without an edit timestamp are unfurls, not edits.
	if before == nil && update.EditedTimestamp == nil {
		return
	}
	author := update.Author
	if author == nil && before != nil {
		author = before.Author
	}
	if l.isSelf(author) {
		return
	}
	// Embed unfurls arrive as updates with the same content.
	if before != nil && before.Content == update.Content {
		return
	}

	oldContent := notCached
	if before != nil {
		oldContent = before.Content
	}
	name, id := describeAuthor(author)
	rec := editRecord{Message: editMessageRecord{
		Type:     TypeEdited,
		Author:   name,
		AuthorID: id,
		Channel:  "#" + l.platform.ChannelName(update.ChannelID),
		URL:      permalink(update.GuildID, update.ChannelID, update.ID),
		Old:      contentRecord{Content: utils.CleanCodeBlock(oldContent)},
		New:      contentRecord{Content: utils.CleanCodeBlock(update.Content)},
	}}
	l.post(ctx, TypeEdited, rec)
}

func (l *Logger) MessageDeleted(ctx context.Context, del *discordgo.MessageDelete) {
	if del == nil || del.Message == nil || del.GuildID == "" {
		return
	}
	msg := del.BeforeDelete
	if msg == nil {
		msg = &discordgo.Message{ID: del.ID, ChannelID: del.ChannelID, GuildID: del.GuildID, Content: notCached}
	}
	if l.isSelf(msg.Author) {
		return
	}
	l.post(ctx, TypeDeleted, record{Message: l.messageRecord(TypeDeleted, msg)})
}

func (l *Logger) MemberJoined(ctx context.Context, user *discordgo.User) {
	l.memberEvent(ctx, user, "joined")
}

func (l *Logger) MemberLeft(ctx context.Context, user *discordgo.User) {
	l.memberEvent(ctx, user, "left")
}

func (l *Logger) memberEvent(ctx context.Context, user *discordgo.User, verb string) {
	if user == nil {
		return
	}
	if l.userChannel == "" {
		l.logger.Debug("user log channel not configured")
		return
	}
	content := fmt.Sprintf("%s (`%s`) %s the server at `%s`.", utils.UserMention(user.ID), user.ID, verb, l.clock.Now().UTC().Format(utcLayout))
	if err := l.platform.Send(ctx, l.userChannel, content); err != nil {
		l.logger.Warn("user log post failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (l *Logger) messageRecord(kind string, msg *discordgo.Message) messageRecord {
	name, id := describeAuthor(msg.Author)
	rec := messageRecord{
		Type:     kind,
		Author:   name,
		AuthorID: id,
		Channel:  "#" + l.platform.ChannelName(msg.ChannelID),
		URL:      permalink(msg.GuildID, msg.ChannelID, msg.ID),
		Content:  utils.CleanCodeBlock(msg.Content),
	}
	for _, attachment := range msg.Attachments {
		rec.Attachments.URLs = append(rec.Attachments.URLs, attachment.URL)
	}
	rec.Attachments.HasAttachments = len(rec.Attachments.URLs) > 0
	return rec
}

func (l *Logger) post(ctx context.Context, kind string, rec any) {
	if l.messageChannel == "" {
		l.logger.Debug("message log channel not configured")
		return
	}
	body, err := Encode(rec)
	if err != nil {
		l.logger.Error("encode message record failed", zap.String("type", kind), zap.Error(err))
		return
	}
	for _, chunk := range utils.SplitCodeBlock(body, "toml") {
		if err := l.platform.Send(ctx, l.messageChannel, chunk); err != nil {
			l.logger.Warn("message log post failed", zap.String("type", kind), zap.Error(err))
			return
		}
	}
	l.metrics.MessagesLogged.WithLabelValues(kind).Inc()
}

// Encode renders a message record as a TOML document.
func Encode(rec any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func describeAuthor(user *discordgo.User) (string, string) {
	if user == nil {
		return "unknown", "unknown"
	}
	return user.String(), user.ID
}

func permalink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
