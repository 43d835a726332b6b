package workspaces

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var (
	memberSort = query.SortField{Field: "JoinedAt"}
	inviteSort = query.SortField{Field: "CreatedAt", Descending: true}
)

func (r *repo) ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]Member, error) {
	if _, err := r.requireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(memberProjection, memberSort).
		WhereEquals("WorkspaceID", workspaceID).
		Build()

	members, err := repository.QueryMany(ctx, r.db, q, args, scanMember)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return members, nil
}

// SendInvite records an invite and adds the invitee as a member in one
// transaction. The invite is stored as accepted; it serves as an audit trail.
func (r *repo) SendInvite(
	ctx context.Context,
	workspaceID, inviterID uuid.UUID,
	cmd InviteCommand,
) (*Invite, error) {
	if cmd.Role == "" {
		cmd.Role = RoleViewer
	}
	email := strings.TrimSpace(cmd.Email)

	if _, err := r.requireRole(ctx, workspaceID, inviterID, RoleAdmin); err != nil {
		return nil, err
	}

	var inviteeID uuid.UUID
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE lower(email) = lower($1)",
		email,
	).Scan(&inviteeID)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, err)
	}

	existing, err := r.MemberRole(ctx, workspaceID, inviteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	inv, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Invite, error) {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO workspace_invites (token, workspace_id, inviter_id, invitee_email, role, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			newInviteToken(), workspaceID, inviterID, email, string(cmd.Role), InvitePending,
		).Scan(&id); err != nil {
			return Invite{}, fmt.Errorf("insert invite: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO workspace_members (workspace_id, user_id, role) VALUES ($1, $2, $3)",
			workspaceID, inviteeID, string(cmd.Role),
		); err != nil {
			return Invite{}, repository.MapError(err, ErrMemberNotFound, ErrAlreadyMember)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE workspace_invites SET status = $2, updated_at = NOW() WHERE id = $1",
			id, InviteAccepted,
		); err != nil {
			return Invite{}, fmt.Errorf("accept invite: %w", err)
		}

		q, args := query.NewBuilder(inviteProjection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, scanInvite)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("member invited", "workspace_id", workspaceID, "user_id", inviteeID, "role", cmd.Role)
	return &inv, nil
}

func (r *repo) ListInvites(ctx context.Context, userID, workspaceID uuid.UUID) ([]Invite, error) {
	if _, err := r.requireRole(ctx, workspaceID, userID, RoleAdmin); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(inviteProjection, inviteSort).
		WhereEquals("WorkspaceID", workspaceID).
		Build()

	invites, err := repository.QueryMany(ctx, r.db, q, args, scanInvite)
	if err != nil {
		return nil, fmt.Errorf("query invites: %w", err)
	}
	return invites, nil
}

func (r *repo) UpdateMemberRole(
	ctx context.Context,
	actorID, workspaceID, userID uuid.UUID,
	role Role,
) (*Member, error) {
	if _, err := r.requireRole(ctx, workspaceID, actorID, RoleAdmin); err != nil {
		return nil, err
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE workspace_members SET role = $3 WHERE workspace_id = $1 AND user_id = $2",
		workspaceID, userID, string(role),
	); err != nil {
		return nil, repository.MapError(err, ErrMemberNotFound, err)
	}

	q, args := query.NewBuilder(memberProjection).
		WhereEquals("WorkspaceID", workspaceID).
		WhereEquals("UserID", userID).
		Build()

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMember)
	if err != nil {
		return nil, repository.MapError(err, ErrMemberNotFound, err)
	}

	r.logger.Info("member role updated", "workspace_id", workspaceID, "user_id", userID, "role", role)
	return &m, nil
}

// RemoveMember removes userID from the workspace. Admins may remove anyone;
// any member may remove themselves.
func (r *repo) RemoveMember(ctx context.Context, actorID, workspaceID, userID uuid.UUID) error {
	if actorID != userID {
		if _, err := r.requireRole(ctx, workspaceID, actorID, RoleAdmin); err != nil {
			return err
		}
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2",
		workspaceID, userID,
	); err != nil {
		return repository.MapError(err, ErrMemberNotFound, err)
	}

	r.logger.Info("member removed", "workspace_id", workspaceID, "user_id", userID)
	return nil
}
