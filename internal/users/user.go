// Package users manages accounts: local and OIDC sign-in, session issuance,
// and profile settings.
package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
)

// Login types stored on users.login_type.
const (
	LoginLocal  = "local"
	LoginGoogle = "google"
	LoginGitHub = "github"
)

// User is an account. PasswordHash never leaves the package.
type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	UserHandle       string    `json:"userid"`
	DisplayName      string    `json:"display_name"`
	LoginType        string    `json:"login_type"`
	IsAdmin          bool      `json:"is_admin"`
	Bio              string    `json:"bio"`
	AvatarURL        string    `json:"avatar_url"`
	ProfilePublic    bool      `json:"profile_public"`
	DefaultAIModelID *int      `json:"default_ai_model_id"`
	Theme            string    `json:"theme"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	passwordHash *string
}

// Identity returns the token identity for u.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, IsAdmin: u.IsAdmin}
}

// Session is returned by every sign-in path.
type Session struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterCommand creates a local account. The handle is the public userid.
type RegisterCommand struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	UserHandle  string `json:"userid" validate:"required,min=3,max=32,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// LoginCommand signs in with a local password.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OIDCCommand exchanges an external ID token for a session.
type OIDCCommand struct {
	IDToken string `json:"id_token" validate:"required"`
}

// UpdateCommand patches profile, privacy and environment settings.
type UpdateCommand struct {
	DisplayName      *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Bio              *string `json:"bio" validate:"omitempty,max=1000"`
	AvatarURL        *string `json:"avatar_url" validate:"omitempty,url"`
	ProfilePublic    *bool   `json:"profile_public"`
	DefaultAIModelID *int    `json:"default_ai_model_id" validate:"omitempty,gt=0"`
	Theme            *string `json:"theme" validate:"omitempty,oneof=light dark system"`
}
