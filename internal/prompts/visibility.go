package prompts

import (
	"encoding/json"
	"slices"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
)

// Visibility controls who may see a prompt.
type Visibility string

// Valid visibility values. Unlisted is enforced like private.
const (
	VisibilityPublic   Visibility = access.Public
	VisibilityPrivate  Visibility = access.Private
	VisibilityUnlisted Visibility = access.Unlisted
)

var visibilities = []Visibility{
	VisibilityPublic,
	VisibilityPrivate,
	VisibilityUnlisted,
}

// UnmarshalJSON rejects values outside the known visibilities.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseVisibility(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVisibility validates s as a visibility value.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !slices.Contains(visibilities, v) {
		return "", ErrInvalidVisibility
	}
	return v, nil
}
