package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"sentinel-modbot/internal/platform/platformtest"
	"sentinel-modbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

func warnEntry() Entry {
	return Entry{
		GuildID:     "g1",
		Action:      "Warn",
		Type:        TypeModerator,
		Author:      Author{Name: "mod#0001", AvatarURL: "https://example.com/mod.png"},
		ModeratorID: "mod",
		Target:      &discordgo.User{ID: "u1", Username: "target", Discriminator: "1234"},
		Reason:      "spamming",
		Color:       0xfdbc4b,
	}
}

func TestBuildEmbed(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	embed := BuildEmbed(warnEntry(), at)

	want := &discordgo.MessageEmbed{
		Title:     "Moderator action: __Warn__",
		Color:     0xfdbc4b,
		Author:    &discordgo.MessageEmbedAuthor{Name: "mod#0001", IconURL: "https://example.com/mod.png"},
		Timestamp: "2024-03-01T12:00:00Z",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target's Username", Value: "target#1234", Inline: true},
			{Name: "Target's ID", Value: "u1", Inline: true},
			{Name: "Reason", Value: "spamming"},
		},
	}
	if diff := cmp.Diff(want, embed); diff != "" {
		t.Fatalf("embed mismatch (-want +got):\n%s", diff)
	}
}

func TestLogPostsAndStores(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := platformtest.New()
	logger := NewLogger(fake, store, zap.NewNop(), "actions")
	logger.WithClock(fixedClock{now: time.Unix(1_700_000_000, 0)})

	if err := logger.Log(context.Background(), warnEntry()); err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(fake.Embeds) != 1 || fake.Embeds[0].ChannelID != "actions" {
		t.Fatalf("expected one embed in actions, got %+v", fake.Embeds)
	}

	cases, err := store.ListCases(context.Background(), "g1", "u1", 0)
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if len(cases) != 1 || cases[0].Action != "warn" || cases[0].ModeratorID != "mod" || cases[0].Automatic {
		t.Fatalf("unexpected stored cases: %+v", cases)
	}
}

func TestLogReturnsPostError(t *testing.T) {
	fake := platformtest.New()
	fake.Errors["SendEmbed"] = errors.New("missing access")
	logger := NewLogger(fake, nil, zap.NewNop(), "actions")
	if err := logger.Log(context.Background(), warnEntry()); err == nil {
		t.Fatalf("expected post error")
	}
}

func TestLogWithoutChannel(t *testing.T) {
	fake := platformtest.New()
	logger := NewLogger(fake, nil, zap.NewNop(), "")
	if err := logger.Log(context.Background(), warnEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("expected no platform calls, got %+v", fake.Calls)
	}
}
