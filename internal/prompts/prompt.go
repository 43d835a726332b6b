// Package prompts implements the prompt/version aggregate for PromptLab.
// A prompt owns an ordered series of versions, each carrying its own model
// setting; tags attach to the prompt and categories to individual versions.
package prompts

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a named container of versions owned by a single user.
type Prompt struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Visibility      Visibility `json:"visibility"`
	LatestVersionID *uuid.UUID `json:"latest_version_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Item is the list and detail shape of a prompt. LatestVersion falls back to
// the highest version number when no published version has been promoted.
type Item struct {
	Prompt
	Tags          []string        `json:"tags"`
	LatestVersion *VersionSummary `json:"latest_version"`
	StarCount     int             `json:"star_count"`
}

// VersionSummary is the compact version shape embedded in an Item.
type VersionSummary struct {
	ID            uuid.UUID `json:"id"`
	VersionNumber int       `json:"version_number"`
	CommitMessage string    `json:"commit_message"`
	IsDraft       bool      `json:"is_draft"`
	CreatedAt     time.Time `json:"created_at"`
}

// Version is an immutable snapshot of prompt content plus its model setting.
type Version struct {
	ID            uuid.UUID     `json:"id"`
	PromptID      uuid.UUID     `json:"prompt_id"`
	VersionNumber int           `json:"version_number"`
	CommitMessage string        `json:"commit_message"`
	Content       string        `json:"content"`
	IsDraft       bool          `json:"is_draft"`
	Revision      int           `json:"revision"`
	CreatedBy     *uuid.UUID    `json:"created_by"`
	CategoryID    *int          `json:"category_id"`
	CategoryCode  *string       `json:"category_code"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	ModelSetting  *ModelSetting `json:"model_setting"`
}

// ModelSetting holds the invocation parameters tied 1:1 to a version.
type ModelSetting struct {
	AIModelID        int      `json:"ai_model_id" validate:"required,gt=0"`
	Temperature      *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxToken         *int     `json:"max_token" validate:"omitempty,gt=0"`
	TopP             *float64 `json:"top_p" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64 `json:"frequency_penalty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64 `json:"presence_penalty" validate:"omitempty,gte=-2,lte=2"`
}

// DefaultTemperature is stored when a model setting omits temperature.
const DefaultTemperature = 1.0

func (m ModelSetting) withDefaults() ModelSetting {
	if m.Temperature == nil {
		t := DefaultTemperature
		m.Temperature = &t
	}
	return m
}

// ModelSettingPatch changes only the fields that are present.
type ModelSettingPatch struct {
	AIModelID        *int     `json:"ai_model_id" validate:"omitempty,gt=0"`
	Temperature      *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxToken         *int     `json:"max_token" validate:"omitempty,gt=0"`
	TopP             *float64 `json:"top_p" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64 `json:"frequency_penalty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64 `json:"presence_penalty" validate:"omitempty,gte=-2,lte=2"`
}

// Category is a global lookup attached to versions by code.
type Category struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateCommand creates a prompt together with its first version.
type CreateCommand struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Description   string        `json:"description" validate:"max=2000"`
	Visibility    Visibility    `json:"visibility"`
	Tags          []string      `json:"tags" validate:"max=20,dive,max=50"`
	CategoryCode  string        `json:"category_code"`
	Content       string        `json:"content" validate:"required"`
	CommitMessage string        `json:"commit_message" validate:"required,max=500"`
	IsDraft       bool          `json:"is_draft"`
	ModelSetting  *ModelSetting `json:"model_setting" validate:"required"`
}

// CreateResult is returned from Create.
type CreateResult struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	LatestVersionID *uuid.UUID `json:"latest_version_id"`
}

// VersionCommand adds a version to an existing prompt. A nil ModelSetting
// copies the setting of the highest existing version.
type VersionCommand struct {
	Content       string        `json:"content" validate:"required"`
	CommitMessage string        `json:"commit_message" validate:"required,max=500"`
	IsDraft       bool          `json:"is_draft"`
	CategoryCode  string        `json:"category_code"`
	ModelSetting  *ModelSetting `json:"model_setting"`
}

// UpdateCommand patches prompt metadata. Tags, when present, replace the
// existing set entirely.
type UpdateCommand struct {
	Name        *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=2000"`
	Visibility  *Visibility `json:"visibility"`
	Tags        *[]string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateVersionCommand patches a version. Setting IsDraft to false publishes
// a draft; a published version cannot return to draft.
type UpdateVersionCommand struct {
	CommitMessage *string `json:"commit_message" validate:"omitempty,min=1,max=500"`
	IsDraft       *bool   `json:"is_draft"`
}
