package platform

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Platform is the slice of the Discord API the bot relies on.
type Platform interface {
	Send(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	Reply(ctx context.Context, msg *discordgo.Message, content string) error
	Delete(ctx context.Context, channelID, messageID string) error
	DirectMessage(ctx context.Context, userID, content string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID string) error
	Bans(ctx context.Context, guildID string) ([]*discordgo.GuildBan, error)
	User(ctx context.Context, userID string) (*discordgo.User, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	ChannelPermissions(ctx context.Context, userID, channelID string) (int64, error)
	ChannelName(channelID string) string
}

// IsNotFound reports whether err is a 404 from the Discord REST API.
func IsNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
