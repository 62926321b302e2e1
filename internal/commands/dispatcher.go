package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Invocation is one parsed command line.
type Invocation struct {
	Message *discordgo.Message
	Kind    Kind
	Args    []string
}

type HandlerFunc func(ctx context.Context, inv Invocation) error

type Dispatcher struct {
	platform    platform.Platform
	logger      *zap.Logger
	metrics     *metrics.Metrics
	prefix      string
	descriptors map[string]config.CommandDescriptor
	handlers    map[Kind]HandlerFunc
	limiter     *utils.SlidingWindow
	limit       int
	now         func() time.Time
}

func NewDispatcher(p platform.Platform, logger *zap.Logger, m *metrics.Metrics, cfg config.Config, handlers map[Kind]HandlerFunc) *Dispatcher {
	if m == nil {
		m = metrics.Nop()
	}
	d := &Dispatcher{
		platform:    p,
		logger:      logger,
		metrics:     m,
		prefix:      cfg.Prefix,
		descriptors: cfg.Commands,
		handlers:    handlers,
		limit:       cfg.CommandLimit.Messages,
		now:         time.Now,
	}
	if cfg.CommandLimit.Messages > 0 && cfg.CommandLimit.WindowSeconds > 0 {
		d.limiter = utils.NewSlidingWindow(time.Duration(cfg.CommandLimit.WindowSeconds) * time.Second)
	}
	return d
}

// Sweep forgets flood-limit state that has aged out.
func (d *Dispatcher) Sweep() {
	if d.limiter != nil {
		d.limiter.Sweep(d.now())
	}
}

// Dispatch runs the command in msg, if any. It reports whether msg was
// treated as a command.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *discordgo.Message) bool {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return false
	}
	if !strings.HasPrefix(msg.Content, d.prefix) {
		return false
	}

	fields := strings.Fields(strings.TrimPrefix(msg.Content, d.prefix))
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if d.limiter != nil && d.limiter.Add(msg.Author.ID, d.now()) > d.limit {
		d.logger.Debug("command rate limited", zap.String("user_id", msg.Author.ID), zap.String("command", name))
		d.metrics.Commands.WithLabelValues(name, "limited").Inc()
		return true
	}

	descriptor, described := d.descriptors[name]
	kind, known := ParseKind(name)
	handler := d.handlers[kind]
	if !described || !known || handler == nil {
		d.metrics.Commands.WithLabelValues("unknown", "invalid").Inc()
		d.reply(ctx, msg, fmt.Sprintf("`%s` isn't a valid command!", name))
		return true
	}

	if descriptor.HasArgs && len(args) == 0 {
		reply := "You didn't provide any arguments!"
		if descriptor.Usage != "" {
			reply += fmt.Sprintf("\nThe proper usage would be: `%s%s %s`", d.prefix, name, descriptor.Usage)
		}
		d.metrics.Commands.WithLabelValues(name, "missing_args").Inc()
		d.reply(ctx, msg, reply)
		return true
	}

	if err := invoke(ctx, handler, Invocation{Message: msg, Kind: kind, Args: args}); err != nil {
		d.logger.Error("command failed",
			zap.String("command", name),
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.Author.ID),
			zap.Error(err))
		d.metrics.Commands.WithLabelValues(name, "error").Inc()
		d.reply(ctx, msg, "There was an error trying to execute that command.")
		return true
	}
	d.metrics.Commands.WithLabelValues(name, "ok").Inc()
	return true
}

func invoke(ctx context.Context, handler HandlerFunc, inv Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return handler(ctx, inv)
}

func (d *Dispatcher) reply(ctx context.Context, msg *discordgo.Message, content string) {
	if err := d.platform.Reply(ctx, msg, content); err != nil {
		d.logger.Warn("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}
