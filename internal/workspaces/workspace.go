// Package workspaces implements team and personal workspaces: membership,
// instant-join invites, and sharing prompts into a workspace with a role.
package workspaces

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the per-user personal workspace from team workspaces.
type Kind string

const (
	KindPersonal Kind = "personal"
	KindTeam     Kind = "team"
)

// Role is a member's role within a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanShare reports whether the role may share prompts into the workspace.
func (r Role) CanShare() bool {
	return r == RoleAdmin || r == RoleEditor
}

// ShareRole is the role a shared prompt grants workspace members.
type ShareRole string

const (
	ShareViewer ShareRole = "viewer"
	ShareEditor ShareRole = "editor"
)

// Invite statuses. Invites are accepted in the same transaction that sends them.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
)

// Workspace is a container prompts can be shared into. Role is the caller's
// effective role when the workspace is loaded for a user.
type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Role        *Role     `json:"role,omitempty"`
}

// Member is a user's membership in a workspace.
type Member struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	UserHandle  string    `json:"userid"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Share is the record attaching a prompt to a workspace.
type Share struct {
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	PromptID    uuid.UUID  `json:"prompt_id"`
	Role        ShareRole  `json:"role"`
	AddedBy     *uuid.UUID `json:"added_by"`
	AddedAt     time.Time  `json:"added_at"`
}

// SharedPrompt is a share joined with the prompt it refers to.
type SharedPrompt struct {
	Share
	Name       string    `json:"name"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Visibility string    `json:"visibility"`
}

// Invite is the audit record of an invitation.
type Invite struct {
	ID           uuid.UUID  `json:"id"`
	Token        string     `json:"token"`
	WorkspaceID  uuid.UUID  `json:"workspace_id"`
	InviterID    *uuid.UUID `json:"inviter_id"`
	InviteeEmail string     `json:"invitee_email"`
	Role         Role       `json:"role"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateCommand creates a team workspace. A nil Slug is derived from Name.
type CreateCommand struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=64"`
	Description string  `json:"description" validate:"max=1000"`
}

// UpdateCommand patches workspace metadata.
type UpdateCommand struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ShareCommand shares a prompt. Role defaults to viewer.
type ShareCommand struct {
	Role ShareRole `json:"role" validate:"omitempty,oneof=viewer editor"`
}

// UpdateShareCommand changes the role of a share.
type UpdateShareCommand struct {
	Role ShareRole `json:"role" validate:"required,oneof=viewer editor"`
}

// InviteCommand adds a registered user by email. Role defaults to viewer.
type InviteCommand struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"omitempty,oneof=admin editor viewer"`
}

// UpdateMemberCommand changes a member's role.
type UpdateMemberCommand struct {
	Role Role `json:"role" validate:"required,oneof=admin editor viewer"`
}
