package workspaces

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for workspace operations. Methods taking
// an actor check the actor's effective role before acting.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Workspace, error)
	EnsurePersonal(ctx context.Context, userID uuid.UUID, name string) (*Workspace, error)
	Find(ctx context.Context, userID, id uuid.UUID) (*Workspace, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]Workspace, error)
	Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Workspace, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (*Role, error)
	ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]Member, error)
	UpdateMemberRole(ctx context.Context, actorID, workspaceID, userID uuid.UUID, role Role) (*Member, error)
	RemoveMember(ctx context.Context, actorID, workspaceID, userID uuid.UUID) error
	SendInvite(ctx context.Context, workspaceID, inviterID uuid.UUID, cmd InviteCommand) (*Invite, error)
	ListInvites(ctx context.Context, userID, workspaceID uuid.UUID) ([]Invite, error)

	SharePrompt(ctx context.Context, workspaceID, promptID, sharerID uuid.UUID, role ShareRole) (*Share, error)
	UpdateShare(ctx context.Context, actorID, workspaceID, promptID uuid.UUID, role ShareRole) (*Share, error)
	Unshare(ctx context.Context, actorID, workspaceID, promptID uuid.UUID) error
	ListShared(ctx context.Context, workspaceID, userID uuid.UUID) ([]SharedPrompt, error)
}
