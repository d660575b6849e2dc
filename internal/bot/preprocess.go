package bot

import "strings"

// CleanWhitespace collapses every run of whitespace to a single space and
// trims the ends, so "  how   are\tyou " becomes "how are you".
func CleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
