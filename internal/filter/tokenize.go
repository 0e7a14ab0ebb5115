package filter

import "regexp"

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// Tokenize splits free text into normalized word tokens, dropping punctuation.
// Used for keyword extraction and intent fallback matching.
func Tokenize(s string) []string {
	return tokenPattern.FindAllString(NormalizeString(s), -1)
}
