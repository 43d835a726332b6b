// Package comments stores discussion threads on prompt versions.
package comments

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a message left on a prompt version.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	PromptID    uuid.UUID `json:"prompt_id"`
	VersionID   uuid.UUID `json:"version_id"`
	UserID      uuid.UUID `json:"user_id"`
	UserHandle  string    `json:"userid"`
	DisplayName string    `json:"display_name"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand is the body of a new comment.
type CreateCommand struct {
	Body string `json:"body" validate:"required,max=5000"`
}
