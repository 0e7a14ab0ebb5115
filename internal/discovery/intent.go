package discovery

import (
	"strings"

	"github.com/mcpdex/mcpdex/internal/filter"
)

// intentLexicon maps well-known phrases to capability tags. Matching is by
// normalized substring, so "I want to send emails" resolves via "send email".
// Longer, more specific phrases are listed first and all matches contribute.
var intentLexicon = []struct {
	phrase string
	tags   []string
}{
	{"send email", []string{"email_send", "email"}},
	{"read email", []string{"email_read", "email"}},
	{"manage calendar", []string{"calendar_write", "calendar"}},
	{"schedule meeting", []string{"calendar_write", "calendar"}},
	{"check calendar", []string{"calendar_read", "calendar"}},
	{"store file", []string{"file_write", "storage"}},
	{"upload file", []string{"file_write", "storage"}},
	{"read file", []string{"file_read", "storage"}},
	{"search the web", []string{"web_search", "search"}},
	{"search web", []string{"web_search", "search"}},
	{"browse", []string{"web_browse", "search"}},
	{"query database", []string{"db_query", "database"}},
	{"run sql", []string{"db_query", "database"}},
	{"send message", []string{"messaging_send", "messaging"}},
	{"chat", []string{"messaging_send", "messaging"}},
	{"translate", []string{"translation"}},
	{"summarize", []string{"summarization"}},
	{"generate image", []string{"image_generation"}},
	{"weather", []string{"weather"}},
	{"payment", []string{"payments"}},
	{"source control", []string{"git", "developer_tools"}},
	{"manage repository", []string{"git", "developer_tools"}},
}

// resolveIntent turns free-text intent into capability tags via the lexicon.
// When no phrase matches, it falls back to naive tokenization; the returned
// tokens are then intersected against candidate keyword lists instead.
func resolveIntent(intent string) (tags []string, fallbackTokens []string) {
	normalized := filter.NormalizeString(intent)
	if normalized == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	for _, entry := range intentLexicon {
		if !strings.Contains(normalized, entry.phrase) {
			continue
		}
		for _, t := range entry.tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	if len(tags) > 0 {
		return tags, nil
	}
	return nil, filter.Tokenize(normalized)
}

// keywordOverlap scores fallback intent tokens against a candidate's keyword
// list: the fraction of tokens present among the keywords.
func keywordOverlap(tokens []string, keywords []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	keywordSet := filter.NormalizeSet(keywords)
	hits := 0
	for _, tok := range tokens {
		if _, ok := keywordSet[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
