package workspaces

import (
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const workspaceColumns = `w.id, w.kind, w.name, w.slug, w.description, w.created_by, w.created_at, w.updated_at`

var shareProjection = query.
	NewProjectionMap("public", "workspace_prompts", "wp").
	Join("JOIN public.prompts p ON p.id = wp.prompt_id").
	Project("workspace_id", "WorkspaceID").
	Project("prompt_id", "PromptID").
	Project("role", "Role").
	Project("added_by", "AddedBy").
	Project("added_at", "AddedAt").
	ProjectExpr("p.name", "Name").
	ProjectExpr("p.owner_id", "OwnerID").
	ProjectExpr("p.visibility", "Visibility")

var memberProjection = query.
	NewProjectionMap("public", "workspace_members", "wm").
	Join("JOIN public.users u ON u.id = wm.user_id").
	Project("workspace_id", "WorkspaceID").
	Project("user_id", "UserID").
	ProjectExpr("u.email", "Email").
	ProjectExpr("u.userid", "UserHandle").
	ProjectExpr("u.display_name", "DisplayName").
	Project("role", "Role").
	Project("joined_at", "JoinedAt")

var inviteProjection = query.
	NewProjectionMap("public", "workspace_invites", "wi").
	Project("id", "ID").
	Project("token", "Token").
	Project("workspace_id", "WorkspaceID").
	Project("inviter_id", "InviterID").
	Project("invitee_email", "InviteeEmail").
	Project("role", "Role").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

func scanWorkspace(s repository.Scanner) (Workspace, error) {
	var w Workspace
	err := s.Scan(
		&w.ID,
		&w.Kind,
		&w.Name,
		&w.Slug,
		&w.Description,
		&w.CreatedBy,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	return w, err
}

func scanWorkspaceWithRole(s repository.Scanner) (Workspace, error) {
	var w Workspace
	var role Role
	err := s.Scan(
		&w.ID,
		&w.Kind,
		&w.Name,
		&w.Slug,
		&w.Description,
		&w.CreatedBy,
		&w.CreatedAt,
		&w.UpdatedAt,
		&role,
	)
	w.Role = &role
	return w, err
}

func scanShare(s repository.Scanner) (Share, error) {
	var sh Share
	err := s.Scan(&sh.WorkspaceID, &sh.PromptID, &sh.Role, &sh.AddedBy, &sh.AddedAt)
	return sh, err
}

func scanSharedPrompt(s repository.Scanner) (SharedPrompt, error) {
	var sp SharedPrompt
	err := s.Scan(
		&sp.WorkspaceID,
		&sp.PromptID,
		&sp.Role,
		&sp.AddedBy,
		&sp.AddedAt,
		&sp.Name,
		&sp.OwnerID,
		&sp.Visibility,
	)
	return sp, err
}

func scanMember(s repository.Scanner) (Member, error) {
	var m Member
	err := s.Scan(
		&m.WorkspaceID,
		&m.UserID,
		&m.Email,
		&m.UserHandle,
		&m.DisplayName,
		&m.Role,
		&m.JoinedAt,
	)
	return m, err
}

func scanInvite(s repository.Scanner) (Invite, error) {
	var i Invite
	err := s.Scan(
		&i.ID,
		&i.Token,
		&i.WorkspaceID,
		&i.InviterID,
		&i.InviteeEmail,
		&i.Role,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
