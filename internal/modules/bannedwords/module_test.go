package bannedwords

import (
	"context"
	"testing"

	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/modules/audit"
	"sentinel-modbot/internal/platform/platformtest"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

var words = config.BannedWords{
	{Word: "slur1", Censored: "s****1", Reason: "hate speech"},
	{Word: "darn", Censored: "d**n", Reason: "language"},
}

func newModule() (*Module, *platformtest.Fake, *metrics.Metrics) {
	fake := platformtest.New()
	m := metrics.Nop()
	auditLogger := audit.NewLogger(fake, nil, zap.NewNop(), "actions")
	return New(fake, auditLogger, zap.NewNop(), m, words, "https://example.com/auto.png"), fake, m
}

func message(content string, bot bool) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "someone", Discriminator: "0042", Bot: bot},
	}
}

func TestHandleMessageBannedWord(t *testing.T) {
	module, fake, m := newModule()

	if !module.HandleMessage(context.Background(), message("well SLUR1 there", false)) {
		t.Fatalf("expected banned word to be acted on")
	}

	want := []platformtest.Call{
		{Method: "Delete", Args: []string{"c1", "m1"}},
		{Method: "Send", Args: []string{"c1", "<@u1>, you used a banned word!"}},
		{Method: "SendEmbed", Args: []string{"actions", "Automatic action: __Warn__"}},
	}
	if diff := cmp.Diff(want, fake.Calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}

	embed := fake.Embeds[0].Embed
	if embed.Color != 0xfdbc4b || embed.Author.Name != "Automatic action" || embed.Author.IconURL != "https://example.com/auto.png" {
		t.Fatalf("unexpected embed %+v", embed)
	}
	if reason := embed.Fields[2].Value; reason != "Used a banned word (s****1)" {
		t.Fatalf("unexpected reason %q", reason)
	}
	if got := testutil.ToFloat64(m.BannedWords); got != 1 {
		t.Fatalf("expected banned word counter 1, got %v", got)
	}
}

func TestHandleMessageWarningDoesNotReferenceDeletedMessage(t *testing.T) {
	module, fake, _ := newModule()

	module.HandleMessage(context.Background(), message("slur1", false))

	if replies := fake.CallsTo("Reply"); len(replies) != 0 {
		t.Fatalf("warning must not reply to the deleted message, got %+v", replies)
	}
	deleteAt, warnAt := -1, -1
	for i, call := range fake.Calls {
		switch {
		case call.Method == "Delete" && call.Args[1] == "m1":
			deleteAt = i
		case call.Method == "Send" && call.Args[0] == "c1":
			warnAt = i
		}
	}
	if deleteAt < 0 || warnAt < deleteAt {
		t.Fatalf("expected a channel warning after the delete, got %+v", fake.Calls)
	}
}

func TestHandleMessageFirstMatchWins(t *testing.T) {
	module, fake, _ := newModule()

	module.HandleMessage(context.Background(), message("darn slur1", false))
	if len(fake.Embeds) != 1 {
		t.Fatalf("expected exactly one audit embed, got %d", len(fake.Embeds))
	}
	if reason := fake.Embeds[0].Embed.Fields[2].Value; reason != "Used a banned word (s****1)" {
		t.Fatalf("expected configuration order to win, got %q", reason)
	}
}

func TestHandleMessageIgnoresBots(t *testing.T) {
	module, fake, _ := newModule()

	if module.HandleMessage(context.Background(), message("slur1", true)) {
		t.Fatalf("bot messages must be ignored")
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("expected no platform calls, got %+v", fake.Calls)
	}
}

func TestHandleMessageClean(t *testing.T) {
	module, fake, _ := newModule()

	if module.HandleMessage(context.Background(), message("hello everyone", false)) {
		t.Fatalf("did not expect a match")
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("expected no platform calls, got %+v", fake.Calls)
	}
}
