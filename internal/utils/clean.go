package utils

import "strings"

const zeroWidthSpace = "\u200b"

var mentionCleaner = strings.NewReplacer("`", "`"+zeroWidthSpace, "@", "@"+zeroWidthSpace)

// Clean breaks backticks and mentions so text can be echoed back into a chat
// code block without escaping it or pinging anyone.
func Clean(text string) string {
	return mentionCleaner.Replace(text)
}

// CleanCodeBlock neutralises triple backticks inside code block content.
func CleanCodeBlock(text string) string {
	return strings.ReplaceAll(text, "```", "`"+zeroWidthSpace+"``")
}
