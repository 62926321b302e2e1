package bot

import (
	"context"
	"testing"

	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/platform/platformtest"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func testBot(t *testing.T) (*Bot, *platformtest.Fake) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LogChannels = config.LogChannels{User: "users", Action: "actions", Message: "messages"}
	cfg.UserIDs.Bot = "self"
	cfg.BannedWords = config.BannedWords{{Word: "slur1", Censored: "s****1", Reason: "hate speech"}}

	fake := platformtest.New()
	return newBot(cfg, zap.NewNop(), nil, nil, fake), fake
}

func message(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "someone", Discriminator: "0042"},
	}
}

func TestBannedWordStopsDispatch(t *testing.T) {
	b, fake := testBot(t)

	b.handleMessage(context.Background(), message("!bannedwords slur1"))

	if got := len(fake.CallsTo("Delete")); got != 1 {
		t.Fatalf("expected message deletion, got %d", got)
	}
	if got := len(fake.CallsTo("DirectMessage")); got != 0 {
		t.Fatalf("command must not run after a banned word, got %d DMs", got)
	}
}

func TestBannedWordMessageIsStillLogged(t *testing.T) {
	b, fake := testBot(t)

	b.handleMessage(context.Background(), message("hello slur1"))

	sends := fake.CallsTo("Send")
	if len(sends) != 2 || sends[0].Args[0] != "messages" || sends[1].Args[0] != "c1" {
		t.Fatalf("expected message log post and channel warning, got %+v", sends)
	}
	if len(fake.Embeds) != 1 {
		t.Fatalf("expected one automatic audit embed, got %d", len(fake.Embeds))
	}
}

func TestCommandIsDispatched(t *testing.T) {
	b, fake := testBot(t)

	b.handleMessage(context.Background(), message("!bannedwords"))

	if got := len(fake.CallsTo("DirectMessage")); got != 1 {
		t.Fatalf("expected banned word list DM, got %d", got)
	}
	if got := len(fake.CallsTo("Send")); got != 0 {
		t.Fatalf("prefixed messages are not message-logged, got %d posts", got)
	}
}

func TestReadyRecordsSelf(t *testing.T) {
	b, fake := testBot(t)
	if b.Ready() {
		t.Fatalf("bot must not be ready before the gateway says so")
	}

	b.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "u1", Username: "modbot"}})
	if !b.Ready() {
		t.Fatalf("expected ready")
	}

	b.handleMessage(context.Background(), message("hello"))
	if got := len(fake.CallsTo("Send")); got != 0 {
		t.Fatalf("own messages must not be logged, got %d posts", got)
	}
}

func TestMemberEvents(t *testing.T) {
	b, fake := testBot(t)
	user := &discordgo.User{ID: "u9"}

	b.onGuildMemberAdd(nil, &discordgo.GuildMemberAdd{Member: &discordgo.Member{User: user}})
	b.onGuildMemberRemove(nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{User: user}})

	sends := fake.CallsTo("Send")
	if len(sends) != 2 || sends[0].Args[0] != "users" || sends[1].Args[0] != "users" {
		t.Fatalf("expected join and leave posts, got %+v", sends)
	}
}
