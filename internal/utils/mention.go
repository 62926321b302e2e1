package utils

import "strings"

// TrimUserID strips user mention markup (<@id> or <@!id>) from a token.
// Anything that is not a complete mention is returned unchanged.
func TrimUserID(token string) string {
	if !strings.HasSuffix(token, ">") {
		return token
	}
	for _, prefix := range []string{"<@!", "<@"} {
		if strings.HasPrefix(token, prefix) && len(token) > len(prefix)+1 {
			return token[len(prefix) : len(token)-1]
		}
	}
	return token
}

func UserMention(id string) string { return "<@" + id + ">" }

func ChannelMention(id string) string { return "<#" + id + ">" }
