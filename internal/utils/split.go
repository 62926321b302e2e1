package utils

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the platform limit for a single message.
const MaxMessageLength = 2000

// SplitMessage cuts text into chunks of at most max bytes, preferring line
// boundaries. Lines longer than max are hard-wrapped.
func SplitMessage(text string, max int) []string {
	if max <= 0 {
		max = MaxMessageLength
	}
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > max {
			flush()
			cut := max
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > max {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}

// SplitCodeBlock splits body like SplitMessage and wraps every chunk in a
// fenced code block tagged with lang.
func SplitCodeBlock(body, lang string) []string {
	open := "```" + lang + "\n"
	closing := "```"
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	parts := SplitMessage(body, MaxMessageLength-len(open)-len(closing)-1)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if !strings.HasSuffix(part, "\n") {
			part += "\n"
		}
		blocks = append(blocks, open+part+closing)
	}
	return blocks
}
