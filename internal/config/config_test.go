package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleConfig = `
discord_token: file-token
prefix: "?"
log_channels:
  user: c-user
  action: c-action
  message: c-message
banned_words:
  zeta:
    censored: z**a
    reason: first in file
  Alpha:
    reason: no censored form
commands:
  warn:
    has_args: true
    usage: "<member> [why]"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadPreservesBannedWordOrder(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := BannedWords{
		{Word: "zeta", Censored: "z**a", Reason: "first in file"},
		{Word: "alpha", Censored: "a***a", Reason: "no censored form"},
	}
	if diff := cmp.Diff(want, cfg.BannedWords); diff != "" {
		t.Fatalf("banned words mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMergesCommandDescriptors(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Commands["warn"].Usage; got != "<member> [why]" {
		t.Fatalf("expected overridden usage, got %q", got)
	}
	if _, ok := cfg.Commands["ban"]; !ok {
		t.Fatalf("expected default ban descriptor to survive")
	}
	if cfg.Prefix != "?" {
		t.Fatalf("expected prefix ?, got %q", cfg.Prefix)
	}
	if cfg.LogChannels.Action != "c-action" {
		t.Fatalf("unexpected action channel %q", cfg.LogChannels.Action)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("ACTION_LOG_CHANNEL", "env-action")
	t.Setenv("EVAL_ENABLED", "yes")
	t.Setenv("RETENTION_DAYS", "30")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "env-token" {
		t.Fatalf("expected env token, got %q", cfg.DiscordToken)
	}
	if cfg.LogChannels.Action != "env-action" {
		t.Fatalf("expected env action channel, got %q", cfg.LogChannels.Action)
	}
	if !cfg.Eval.Enabled {
		t.Fatalf("expected eval enabled from env")
	}
	if cfg.RetentionDays != 30 {
		t.Fatalf("expected retention 30 from env, got %d", cfg.RetentionDays)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(writeConfig(t, "prefix: \"!\"\n")); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestBannedWordsRejectsSequence(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	if _, err := Load(writeConfig(t, "banned_words:\n  - one\n  - two\n")); err == nil {
		t.Fatalf("expected error for sequence banned_words")
	}
}

func TestBuildLoggerWithFile(t *testing.T) {
	logger, err := BuildLogger("debug", filepath.Join(t.TempDir(), "bot.log"))
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()
}
