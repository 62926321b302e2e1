package platform

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const banPageSize = 1000

var _ Platform = (*Discord)(nil)

// Discord adapts a discordgo session to Platform.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) Send(ctx context.Context, channelID, content string) error {
	_, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := d.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) Reply(ctx context.Context, msg *discordgo.Message, content string) error {
	_, err := d.session.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference(), discordgo.WithContext(ctx))
	return err
}

func (d *Discord) Delete(ctx context.Context, channelID, messageID string) error {
	return d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d *Discord) DirectMessage(ctx context.Context, userID, content string) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = d.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) Kick(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (d *Discord) Ban(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}

func (d *Discord) Unban(ctx context.Context, guildID, userID string) error {
	return d.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
}

// Bans returns the full ban list, following pagination.
func (d *Discord) Bans(ctx context.Context, guildID string) ([]*discordgo.GuildBan, error) {
	var all []*discordgo.GuildBan
	after := ""
	for {
		page, err := d.session.GuildBans(guildID, banPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < banPageSize {
			return all, nil
		}
		last := page[len(page)-1]
		if last == nil || last.User == nil {
			return all, nil
		}
		after = last.User.ID
	}
}

func (d *Discord) User(ctx context.Context, userID string) (*discordgo.User, error) {
	return d.session.User(userID, discordgo.WithContext(ctx))
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if d.session.State != nil {
		if member, err := d.session.State.Member(guildID, userID); err == nil && member != nil {
			return member, nil
		}
	}
	return d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (d *Discord) ChannelPermissions(ctx context.Context, userID, channelID string) (int64, error) {
	return d.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
}

func (d *Discord) ChannelName(channelID string) string {
	if d.session.State == nil {
		return channelID
	}
	channel, err := d.session.State.Channel(channelID)
	if err != nil || channel == nil || channel.Name == "" {
		return channelID
	}
	return channel.Name
}
