package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"sentinel-modbot/internal/analytics"
	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/moderation"
	"sentinel-modbot/internal/platform"
	"sentinel-modbot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/expr-lang/expr"
	"go.uber.org/zap"
)

const historyRecent = 5

type Handlers struct {
	platform    platform.Platform
	executor    *moderation.Executor
	analytics   *analytics.Service
	logger      *zap.Logger
	words       config.BannedWords
	ownerID     string
	evalEnabled bool
	prefix      string
	commands    []string
	usage       map[string]string
	startedAt   time.Time
}

func NewHandlers(p platform.Platform, executor *moderation.Executor, analyticsService *analytics.Service, logger *zap.Logger, cfg config.Config) *Handlers {
	names := make([]string, 0, len(cfg.Commands))
	usage := make(map[string]string, len(cfg.Commands))
	for name, descriptor := range cfg.Commands {
		names = append(names, name)
		usage[name] = descriptor.Usage
	}
	sort.Strings(names)
	return &Handlers{
		platform:    p,
		executor:    executor,
		analytics:   analyticsService,
		logger:      logger,
		words:       cfg.BannedWords,
		ownerID:     cfg.UserIDs.Owner,
		evalEnabled: cfg.Eval.Enabled,
		prefix:      cfg.Prefix,
		commands:    names,
		usage:       usage,
		startedAt:   time.Now(),
	}
}

// Table maps every command kind to its handler.
func (h *Handlers) Table() map[Kind]HandlerFunc {
	return map[Kind]HandlerFunc{
		Warn:        h.memberAction(moderation.Warn),
		Kick:        h.memberAction(moderation.Kick),
		Ban:         h.banAction(moderation.Ban, true),
		Unban:       h.banAction(moderation.Unban, false),
		BannedWords: h.bannedWords,
		Eval:        h.eval,
		History:     h.history,
	}
}

// memberAction handles actions whose target must currently be in the guild.
func (h *Handlers) memberAction(kind moderation.Kind) HandlerFunc {
	return func(ctx context.Context, inv Invocation) error {
		msg := inv.Message
		if msg.GuildID == "" {
			return h.reply(ctx, msg, "That command only works in a server.")
		}
		if len(inv.Args) == 0 {
			return h.missingArgs(ctx, inv)
		}
		req, err := moderation.NewRequest(kind, inv.Args, msg.Author)
		if err != nil {
			return err
		}
		if _, err := h.platform.Member(ctx, msg.GuildID, req.Target); err != nil {
			if !platform.IsNotFound(err) {
				return fmt.Errorf("member lookup: %w", err)
			}
			return h.reply(ctx, msg, "That user doesn't seem to be here.")
		}
		_, err = h.executor.Execute(ctx, msg, req)
		return err
	}
}

// banAction handles ban and unban. A ban needs a target that is not banned
// yet, an unban one that is.
func (h *Handlers) banAction(kind moderation.Kind, banning bool) HandlerFunc {
	return func(ctx context.Context, inv Invocation) error {
		msg := inv.Message
		if msg.GuildID == "" {
			return h.reply(ctx, msg, "That command only works in a server.")
		}
		if len(inv.Args) == 0 {
			return h.missingArgs(ctx, inv)
		}
		req, err := moderation.NewRequest(kind, inv.Args, msg.Author)
		if err != nil {
			return err
		}
		banned, err := h.executor.IsBanned(ctx, msg.GuildID, req.Target)
		if err != nil {
			return err
		}
		if banning && banned {
			return h.reply(ctx, msg, "That user has already been banned.")
		}
		if !banning && !banned {
			return h.reply(ctx, msg, "That user is not banned.")
		}
		_, err = h.executor.Execute(ctx, msg, req)
		return err
	}
}

func (h *Handlers) bannedWords(ctx context.Context, inv Invocation) error {
	msg := inv.Message
	var b strings.Builder
	b.WriteString("Here's a list of all the banned words:\n")
	for _, word := range h.words {
		fmt.Fprintf(&b, "> — `%s`: %s\n", word.Censored, word.Reason)
	}

	for _, chunk := range utils.SplitMessage(b.String(), utils.MaxMessageLength) {
		if err := h.platform.DirectMessage(ctx, msg.Author.ID, chunk); err != nil {
			h.logger.Warn("banned word list DM failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
			return h.reply(ctx, msg, "It seems like I can't DM you!")
		}
	}
	if msg.GuildID == "" {
		return nil
	}
	return h.reply(ctx, msg, "I've sent you a DM with a list of banned words.")
}

// eval evaluates an expression against a read-only snapshot of the bot. The
// expression language has no access to the process, network or platform.
func (h *Handlers) eval(ctx context.Context, inv Invocation) error {
	msg := inv.Message
	if !h.evalEnabled {
		return h.reply(ctx, msg, "That command is disabled.")
	}
	if h.ownerID == "" || msg.Author.ID != h.ownerID {
		return h.reply(ctx, msg, "You must be the bot owner to use this command.")
	}

	code := strings.Join(inv.Args, " ")
	result, err := h.evaluate(code, msg)
	if err != nil {
		return h.platform.Send(ctx, msg.ChannelID, fmt.Sprintf("`ERROR` ```xl\n%s\n```", utils.Clean(err.Error())))
	}
	for _, block := range utils.SplitCodeBlock(utils.Clean(result), "xl") {
		if err := h.platform.Send(ctx, msg.ChannelID, block); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) evaluate(code string, msg *discordgo.Message) (string, error) {
	env := map[string]any{
		"guild":        msg.GuildID,
		"channel":      msg.ChannelID,
		"author":       msg.Author.Username,
		"author_id":    msg.Author.ID,
		"prefix":       h.prefix,
		"banned_words": len(h.words),
		"commands":     h.commands,
		"uptime":       time.Since(h.startedAt).Round(time.Second).String(),
	}
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return "", err
	}
	if s, ok := out.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", out), nil
}

func (h *Handlers) history(ctx context.Context, inv Invocation) error {
	msg := inv.Message
	if msg.GuildID == "" {
		return h.reply(ctx, msg, "That command only works in a server.")
	}
	perms, err := h.platform.ChannelPermissions(ctx, msg.Author.ID, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("channel permissions: %w", err)
	}
	need := moderation.Warn.Permission()
	if perms&need != need {
		return h.reply(ctx, msg, fmt.Sprintf("You're missing the `%s` permission required for that command.", moderation.PermissionName(need)))
	}

	if len(inv.Args) == 0 {
		return h.missingArgs(ctx, inv)
	}
	target := utils.TrimUserID(inv.Args[0])
	report, err := h.analytics.Report(ctx, msg.GuildID, target, historyRecent)
	if err != nil {
		return fmt.Errorf("case report: %w", err)
	}
	return h.reply(ctx, msg, utils.SplitMessage(FormatHistory(target, report), utils.MaxMessageLength)[0])
}

// FormatHistory renders a case report for a chat reply.
func FormatHistory(target string, report analytics.Report) string {
	if report.Total == 0 {
		return fmt.Sprintf("No cases recorded for `%s`.", target)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cases for `%s`: %d total, %d automatic\n", target, report.Total, report.Automatic)

	actions := make([]string, 0, len(report.ByAction))
	for action := range report.ByAction {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	counts := make([]string, 0, len(actions))
	for _, action := range actions {
		counts = append(counts, fmt.Sprintf("%s: %d", action, report.ByAction[action]))
	}
	b.WriteString(strings.Join(counts, ", "))

	for _, c := range report.Recent {
		by := "automatic"
		if c.ModeratorID != "" {
			by = "`" + c.ModeratorID + "`"
		}
		fmt.Fprintf(&b, "\n`%s` %s by %s: %s", c.CreatedAt.UTC().Format("2006-01-02"), c.Action, by, c.Reason)
	}
	return b.String()
}

// missingArgs answers commands that need a target but were configured
// without has_args.
func (h *Handlers) missingArgs(ctx context.Context, inv Invocation) error {
	reply := "You didn't provide any arguments!"
	if usage := h.usage[inv.Kind.String()]; usage != "" {
		reply += fmt.Sprintf("\nThe proper usage would be: `%s%s %s`", h.prefix, inv.Kind, usage)
	}
	return h.reply(ctx, inv.Message, reply)
}

func (h *Handlers) reply(ctx context.Context, msg *discordgo.Message, content string) error {
	if err := h.platform.Reply(ctx, msg, content); err != nil {
		h.logger.Warn("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
	return nil
}
