// Package platformtest provides a recording in-memory Platform for tests.
package platformtest

import (
	"context"
	"net/http"
	"sync"

	"sentinel-modbot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

var _ platform.Platform = (*Fake)(nil)

// ErrNotFound is what Discord answers for unknown users and members.
var ErrNotFound error = &discordgo.RESTError{
	Response: &http.Response{Status: "404 Not Found", StatusCode: http.StatusNotFound},
}

// Call is one recorded platform request.
type Call struct {
	Method string
	Args   []string
}

// Fake records every request and answers from its fields. Set Errors[method]
// to make that method fail.
type Fake struct {
	mu sync.Mutex

	Users       map[string]*discordgo.User
	Members     map[string]bool
	Banned      []string
	Permissions map[string]int64
	Channels    map[string]string
	Errors      map[string]error

	Calls  []Call
	Embeds []SentEmbed
}

type SentEmbed struct {
	ChannelID string
	Embed     *discordgo.MessageEmbed
}

func New() *Fake {
	return &Fake{
		Users:       make(map[string]*discordgo.User),
		Members:     make(map[string]bool),
		Permissions: make(map[string]int64),
		Channels:    make(map[string]string),
		Errors:      make(map[string]error),
	}
}

// AddMember registers a user that is both fetchable and present in the guild.
func (f *Fake) AddMember(user *discordgo.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Users[user.ID] = user
	f.Members[user.ID] = true
}

func (f *Fake) record(method string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
	return f.Errors[method]
}

// CallsTo returns the recorded calls to method, in order.
func (f *Fake) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []Call
	for _, call := range f.Calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Mutations returns the calls that change guild membership or bans.
func (f *Fake) Mutations() []Call {
	var calls []Call
	for _, method := range []string{"Kick", "Ban", "Unban"} {
		calls = append(calls, f.CallsTo(method)...)
	}
	return calls
}

func (f *Fake) Send(ctx context.Context, channelID, content string) error {
	return f.record("Send", channelID, content)
}

func (f *Fake) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if err := f.record("SendEmbed", channelID, embed.Title); err != nil {
		return err
	}
	f.mu.Lock()
	f.Embeds = append(f.Embeds, SentEmbed{ChannelID: channelID, Embed: embed})
	f.mu.Unlock()
	return nil
}

func (f *Fake) Reply(ctx context.Context, msg *discordgo.Message, content string) error {
	return f.record("Reply", msg.ChannelID, msg.ID, content)
}

func (f *Fake) Delete(ctx context.Context, channelID, messageID string) error {
	return f.record("Delete", channelID, messageID)
}

func (f *Fake) DirectMessage(ctx context.Context, userID, content string) error {
	return f.record("DirectMessage", userID, content)
}

func (f *Fake) Kick(ctx context.Context, guildID, userID, reason string) error {
	return f.record("Kick", guildID, userID, reason)
}

func (f *Fake) Ban(ctx context.Context, guildID, userID, reason string) error {
	return f.record("Ban", guildID, userID, reason)
}

func (f *Fake) Unban(ctx context.Context, guildID, userID string) error {
	return f.record("Unban", guildID, userID)
}

func (f *Fake) Bans(ctx context.Context, guildID string) ([]*discordgo.GuildBan, error) {
	if err := f.record("Bans", guildID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	bans := make([]*discordgo.GuildBan, 0, len(f.Banned))
	for _, id := range f.Banned {
		bans = append(bans, &discordgo.GuildBan{User: &discordgo.User{ID: id}})
	}
	return bans, nil
}

func (f *Fake) User(ctx context.Context, userID string) (*discordgo.User, error) {
	if err := f.record("User", userID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.Users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *Fake) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if err := f.record("Member", guildID, userID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Members[userID] {
		return nil, ErrNotFound
	}
	return &discordgo.Member{GuildID: guildID, User: f.Users[userID]}, nil
}

func (f *Fake) ChannelPermissions(ctx context.Context, userID, channelID string) (int64, error) {
	if err := f.record("ChannelPermissions", userID, channelID); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Permissions[userID], nil
}

func (f *Fake) ChannelName(channelID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.Channels[channelID]; ok {
		return name
	}
	return channelID
}
