package bot

import (
	"context"
	"sync/atomic"
	"time"

	"sentinel-modbot/internal/analytics"
	"sentinel-modbot/internal/commands"
	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/moderation"
	"sentinel-modbot/internal/modules/audit"
	"sentinel-modbot/internal/modules/bannedwords"
	"sentinel-modbot/internal/modules/messagelog"
	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	stateMessageCount = 500
	sweepInterval     = time.Minute
	cleanupInterval   = 24 * time.Hour
)

type Bot struct {
	cfg         config.Config
	logger      *zap.Logger
	store       *storage.Store
	metrics     *metrics.Metrics
	session     *discordgo.Session
	dispatcher  *commands.Dispatcher
	bannedWords *bannedwords.Module
	messages    *messagelog.Logger
	ready       atomic.Bool
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, m *metrics.Metrics) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	// Edit and delete logs read the previous content from the state cache.
	session.StateEnabled = true
	session.State.MaxMessageCount = stateMessageCount

	b := newBot(cfg, logger, store, m, platform.NewDiscord(session))
	b.session = session
	return b, nil
}

func newBot(cfg config.Config, logger *zap.Logger, store *storage.Store, m *metrics.Metrics, p platform.Platform) *Bot {
	if m == nil {
		m = metrics.Nop()
	}
	auditLogger := audit.NewLogger(p, store, logger, cfg.LogChannels.Action)
	executor := moderation.NewExecutor(p, auditLogger, logger, m)

	var analyticsService *analytics.Service
	if store != nil {
		analyticsService = analytics.New(store)
	}
	handlers := commands.NewHandlers(p, executor, analyticsService, logger, cfg)

	return &Bot{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		metrics:     m,
		dispatcher:  commands.NewDispatcher(p, logger, m, cfg, handlers.Table()),
		bannedWords: bannedwords.New(p, auditLogger, logger, m, cfg.BannedWords, cfg.AutomaticAvatar),
		messages:    messagelog.New(p, logger, m, cfg.Prefix, cfg.LogChannels.Message, cfg.LogChannels.User, cfg.UserIDs.Bot),
	}
}

// Start connects to the gateway and starts background maintenance, which
// stops when ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageUpdate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)

	if err := b.session.Open(); err != nil {
		return err
	}

	go b.maintain(ctx)
	return nil
}

func (b *Bot) Close() {
	b.ready.Store(false)
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Ready reports whether the gateway session has been established.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.metrics.Events.WithLabelValues("ready").Inc()
	if event.User != nil {
		b.messages.SetSelfID(event.User.ID)
		b.logger.Info("discord ready", zap.String("user", event.User.Username), zap.Int("guilds", len(event.Guilds)))
	}
	b.ready.Store(true)
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	b.handleMessage(context.Background(), msg.Message)
}

// handleMessage logs msg, then either removes it for a banned word or runs
// the command it carries.
func (b *Bot) handleMessage(ctx context.Context, msg *discordgo.Message) {
	if msg == nil || msg.Author == nil {
		return
	}
	b.metrics.Events.WithLabelValues("message_create").Inc()

	b.messages.MessageCreated(ctx, msg)
	if b.bannedWords.HandleMessage(ctx, msg) {
		return
	}
	b.dispatcher.Dispatch(ctx, msg)
}

func (b *Bot) onMessageUpdate(session *discordgo.Session, update *discordgo.MessageUpdate) {
	b.metrics.Events.WithLabelValues("message_update").Inc()
	b.messages.MessageUpdated(context.Background(), update)
}

func (b *Bot) onMessageDelete(session *discordgo.Session, del *discordgo.MessageDelete) {
	b.metrics.Events.WithLabelValues("message_delete").Inc()
	b.messages.MessageDeleted(context.Background(), del)
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, member *discordgo.GuildMemberAdd) {
	b.metrics.Events.WithLabelValues("member_add").Inc()
	if member.Member != nil {
		b.messages.MemberJoined(context.Background(), member.User)
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, member *discordgo.GuildMemberRemove) {
	b.metrics.Events.WithLabelValues("member_remove").Inc()
	if member.Member != nil {
		b.messages.MemberLeft(context.Background(), member.User)
	}
}

func (b *Bot) maintain(ctx context.Context) {
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	b.cleanupCases(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			b.dispatcher.Sweep()
		case <-cleanup.C:
			b.cleanupCases(ctx)
		}
	}
}

func (b *Bot) cleanupCases(ctx context.Context) {
	if b.store == nil || b.cfg.RetentionDays <= 0 {
		return
	}
	if err := b.store.CleanupCases(ctx, b.cfg.RetentionDays); err != nil {
		b.logger.Warn("case cleanup failed", zap.Error(err))
	}
}
