package commands

// Kind is a chat command the bot implements.
type Kind int

const (
	Warn Kind = iota + 1
	Kick
	Ban
	Unban
	BannedWords
	Eval
	History
)

var Kinds = []Kind{Warn, Kick, Ban, Unban, BannedWords, Eval, History}

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
	case BannedWords:
		return "bannedwords"
	case Eval:
		return "eval"
	case History:
		return "history"
	default:
		return "unknown"
	}
}

// ParseKind maps a lowercased command name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, kind := range Kinds {
		if kind.String() == name {
			return kind, true
		}
	}
	return 0, false
}
