package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type BannedWord struct {
	Word     string
	Censored string `yaml:"censored"`
	Reason   string `yaml:"reason"`
}

// BannedWords keeps the order in which words appear in the configuration
// mapping; the scanner acts on the first match in that order.
type BannedWords []BannedWord

func (w *BannedWords) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("banned_words: expected a mapping, got line %d", node.Line)
	}

	words := make(BannedWords, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var entry BannedWord
		if err := valueNode.Decode(&entry); err != nil {
			return fmt.Errorf("banned_words.%s: %w", keyNode.Value, err)
		}
		entry.Word = strings.ToLower(strings.TrimSpace(keyNode.Value))
		if entry.Word == "" {
			return fmt.Errorf("banned_words: empty word on line %d", keyNode.Line)
		}
		if entry.Censored == "" {
			entry.Censored = censor(entry.Word)
		}
		words = append(words, entry)
	}
	*w = words
	return nil
}

func censor(word string) string {
	runes := []rune(word)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
