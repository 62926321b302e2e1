package moderation

import "github.com/bwmarrin/discordgo"

// Kind is a moderation action a moderator can take.
type Kind int

const (
	Warn Kind = iota + 1
	Kick
	Ban
	Unban
)

var Kinds = []Kind{Warn, Kick, Ban, Unban}

func (k Kind) String() string {
	switch k {
	case Warn:
		return "warn"
	case Kick:
		return "kick"
	case Ban:
		return "ban"
	case Unban:
		return "unban"
	default:
		return "unknown"
	}
}

// Title is the capitalised name used in audit embeds.
func (k Kind) Title() string {
	switch k {
	case Warn:
		return "Warn"
	case Kick:
		return "Kick"
	case Ban:
		return "Ban"
	case Unban:
		return "Unban"
	default:
		return "Unknown"
	}
}

// Permission is the channel permission an invoker needs for k.
func (k Kind) Permission() int64 {
	switch k {
	case Warn:
		return discordgo.PermissionViewAuditLogs
	case Kick:
		return discordgo.PermissionKickMembers
	case Ban, Unban:
		return discordgo.PermissionBanMembers
	default:
		return 0
	}
}

func (k Kind) Color() int {
	switch k {
	case Warn:
		return 0xfdbc4b
	case Kick:
		return 0xf67400
	case Ban:
		return 0xed1515
	case Unban:
		return 0x1d99d3
	default:
		return 0
	}
}

func (k Kind) Valid() bool {
	return k >= Warn && k <= Unban
}

// PermissionName renders a permission flag the way Discord documents it.
func PermissionName(permission int64) string {
	switch permission {
	case discordgo.PermissionViewAuditLogs:
		return "VIEW_AUDIT_LOG"
	case discordgo.PermissionKickMembers:
		return "KICK_MEMBERS"
	case discordgo.PermissionBanMembers:
		return "BAN_MEMBERS"
	default:
		return "UNKNOWN"
	}
}
