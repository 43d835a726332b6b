// Package favorites stars prompt versions. Star counts are derived from the
// favorites table on read; nothing is denormalized.
package favorites

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a user's star on a prompt version.
type Favorite struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	PromptVersionID uuid.UUID `json:"prompt_version_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Status is the response body of a successful star. StarCount is the
// version's total after the star and is omitted when it could not be read.
type Status struct {
	Starred   bool `json:"starred"`
	StarCount int  `json:"star_count,omitempty"`
}
