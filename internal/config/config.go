package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

const defaultAutomaticAvatar = "https://cdn.discordapp.com/avatars/760300941961854976/3d1940dd0973e903fbfaa82587b3a646.png?size=128"

type Config struct {
	DiscordToken    string                       `yaml:"discord_token"`
	Prefix          string                       `yaml:"prefix"`
	LogLevel        string                       `yaml:"log_level"`
	LogFile         string                       `yaml:"log_file"`
	DatabasePath    string                       `yaml:"database_path"`
	RetentionDays   int                          `yaml:"retention_days"`
	AutomaticAvatar string                       `yaml:"automatic_avatar"`
	UserIDs         UserIDs                      `yaml:"user_ids"`
	LogChannels     LogChannels                  `yaml:"log_channels"`
	Health          HealthConfig                 `yaml:"health"`
	Eval            EvalConfig                   `yaml:"eval"`
	CommandLimit    CommandLimit                 `yaml:"command_limit"`
	BannedWords     BannedWords                  `yaml:"banned_words"`
	Commands        map[string]CommandDescriptor `yaml:"commands"`
}

type UserIDs struct {
	Owner string `yaml:"owner"`
	Bot   string `yaml:"bot"`
}

// LogChannels routes each log category to a channel ID.
type LogChannels struct {
	User    string `yaml:"user"`
	Action  string `yaml:"action"`
	Message string `yaml:"message"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type EvalConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CommandLimit struct {
	Messages      int `yaml:"messages"`
	WindowSeconds int `yaml:"window_seconds"`
}

type CommandDescriptor struct {
	HasArgs bool   `yaml:"has_args"`
	Usage   string `yaml:"usage"`
}

func DefaultConfig() Config {
	return Config{
		Prefix:          "!",
		LogLevel:        "info",
		DatabasePath:    "/data/modbot.db",
		RetentionDays:   365,
		AutomaticAvatar: defaultAutomaticAvatar,
		Health:          HealthConfig{Enabled: false, Addr: ":8080"},
		Eval:            EvalConfig{Enabled: false},
		CommandLimit:    CommandLimit{Messages: 5, WindowSeconds: 10},
		Commands:        DefaultCommands(),
	}
}

func DefaultCommands() map[string]CommandDescriptor {
	return map[string]CommandDescriptor{
		"warn":        {HasArgs: true, Usage: "<user> [reason]"},
		"kick":        {HasArgs: true, Usage: "<user> [reason]"},
		"ban":         {HasArgs: true, Usage: "<user> [reason]"},
		"unban":       {HasArgs: true, Usage: "<user> [reason]"},
		"bannedwords": {HasArgs: false},
		"eval":        {HasArgs: true, Usage: "<expression>"},
		"history":     {HasArgs: true, Usage: "<user>"},
	}
}

// Load reads defaults, then the YAML file at path, then the environment.
// An empty path falls back to CONFIG_PATH and then config.yaml; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		return Config{}, errors.New("command prefix must not be empty")
	}
	if cfg.Commands == nil {
		cfg.Commands = DefaultCommands()
	}
	normalizeCommands(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.Prefix = envString("COMMAND_PREFIX", cfg.Prefix)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.UserIDs.Owner = envString("OWNER_ID", cfg.UserIDs.Owner)
	cfg.UserIDs.Bot = envString("BOT_ID", cfg.UserIDs.Bot)
	cfg.LogChannels.User = envString("USER_LOG_CHANNEL", cfg.LogChannels.User)
	cfg.LogChannels.Action = envString("ACTION_LOG_CHANNEL", cfg.LogChannels.Action)
	cfg.LogChannels.Message = envString("MESSAGE_LOG_CHANNEL", cfg.LogChannels.Message)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Eval.Enabled = envBool("EVAL_ENABLED", cfg.Eval.Enabled)
	cfg.CommandLimit.Messages = envInt("COMMAND_LIMIT_MESSAGES", cfg.CommandLimit.Messages)
	cfg.CommandLimit.WindowSeconds = envInt("COMMAND_LIMIT_WINDOW_SECONDS", cfg.CommandLimit.WindowSeconds)
}

func normalizeCommands(cfg *Config) {
	commands := make(map[string]CommandDescriptor, len(cfg.Commands))
	for name, descriptor := range cfg.Commands {
		commands[strings.ToLower(strings.TrimSpace(name))] = descriptor
	}
	cfg.Commands = commands
}

// BuildLogger returns a JSON zap logger. When file is set, entries are also
// written to a rotating log file.
func BuildLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil || file == "" {
		return logger, err
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    64,
		MaxBackups: 8,
		MaxAge:     30,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(rotator), cfg.Level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
