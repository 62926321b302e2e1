package moderation

import (
	"errors"
	"fmt"
	"strings"

	"sentinel-modbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var ErrInvalidRequest = errors.New("invalid moderation request")

// Request is a validated moderation action ready for the executor.
type Request struct {
	Kind       Kind
	Args       []string
	Target     string
	Reason     string
	Permission int64
	Color      int
	Invoker    *discordgo.User
}

// NewRequest builds a request from command arguments. The first argument is
// the target; the rest form the reason.
func NewRequest(kind Kind, args []string, invoker *discordgo.User) (Request, error) {
	if !kind.Valid() {
		return Request{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidRequest, kind)
	}
	if invoker == nil {
		return Request{}, fmt.Errorf("%w: missing invoker", ErrInvalidRequest)
	}
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: missing target", ErrInvalidRequest)
	}
	target := utils.TrimUserID(strings.TrimSpace(args[0]))
	if target == "" {
		return Request{}, fmt.Errorf("%w: empty target", ErrInvalidRequest)
	}

	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = fmt.Sprintf("No reason specified, contact %s for details", utils.UserMention(invoker.ID))
	}

	return Request{
		Kind:       kind,
		Args:       args,
		Target:     target,
		Reason:     reason,
		Permission: kind.Permission(),
		Color:      kind.Color(),
		Invoker:    invoker,
	}, nil
}
