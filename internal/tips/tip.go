// Package tips stores prompt-writing guidance and retrieves the tips most
// relevant to a piece of prompt text, by embedding distance when an embedder
// is configured and by keyword match otherwise.
package tips

import (
	"io"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
)

// Match kinds reported on a Suggestion.
const (
	MatchSemantic = "semantic"
	MatchKeyword  = "keyword"
)

// DefaultSuggestLimit is used when a suggest request omits a limit.
const DefaultSuggestLimit = 3

// Tip is a single piece of prompt-writing guidance.
type Tip struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags"`
	StorageKey *string   `json:"storage_key,omitempty"`
	Embedded   bool      `json:"embedded"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Suggestion pairs a tip with how it was matched.
// Distance is the cosine distance and is only set for semantic matches.
type Suggestion struct {
	Tip      Tip      `json:"tip"`
	Match    string   `json:"match"`
	Distance *float64 `json:"distance,omitempty"`
}

// Document is an open handle on a tip's uploaded source. Callers close Body.
type Document struct {
	Body     io.ReadCloser
	Filename string
}

// CreateCommand is the JSON body for creating a tip.
type CreateCommand struct {
	Title string   `json:"title" validate:"required,max=200"`
	Body  string   `json:"body" validate:"required,max=20000"`
	Tags  []string `json:"tags" validate:"max=20,dive,required,max=50"`
}

// UploadCommand carries a text document uploaded as the body of a new tip.
type UploadCommand struct {
	Title       string
	Tags        []string
	Filename    string
	ContentType string
	Data        []byte
}

// SuggestCommand is the JSON body for retrieving tips relevant to text.
type SuggestCommand struct {
	Text  string `json:"text" validate:"required,max=20000"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=20"`
}

// Query holds the list parameters for tips.
type Query struct {
	Page pagination.PageRequest
	Tag  *string
}

// QueryFromValues reads page, limit, search, sort, and tag from the URL.
func QueryFromValues(values url.Values, cfg pagination.Config) (Query, error) {
	page, err := pagination.ParsePageRequest(values, cfg)
	if err != nil {
		return Query{}, err
	}
	if s := strings.TrimSpace(values.Get("q")); s != "" {
		page.Search = &s
	}
	page.Sort = query.ParseSortFields(values.Get("sort"))
	q := Query{Page: page}
	if tag := strings.TrimSpace(values.Get("tag")); tag != "" {
		tag = strings.ToLower(tag)
		q.Tag = &tag
	}
	return q, nil
}

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "being": true, "from": true, "have": true, "into": true,
	"just": true, "like": true, "make": true, "more": true, "most": true,
	"only": true, "other": true, "over": true, "should": true, "some": true,
	"such": true, "than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"very": true, "want": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "will": true, "with": true,
	"would": true, "your": true,
}

// Keywords extracts up to limit distinct lowercase words of four or more
// letters from text, skipping common stopwords and {{placeholders}}.
// Longer words come first; ties keep their order of appearance.
func Keywords(text string, limit int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '{' && r != '}'
	})

	seen := make(map[string]bool)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.ContainsAny(f, "{}") {
			continue
		}
		if len([]rune(f)) < 4 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}

	sort.SliceStable(words, func(i, j int) bool {
		return len(words[i]) > len(words[j])
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
