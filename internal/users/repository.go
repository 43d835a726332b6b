package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yumina0616/PromptLab-sub000/internal/workspaces"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const (
	emailConstraint  = "users_email_key"
	handleConstraint = "users_userid_key"
	modelConstraint  = "users_default_ai_model_fkey"

	// maxHandleAttempts bounds suffix retries when an OIDC handle collides.
	maxHandleAttempts = 5
)

type repo struct {
	db         *sql.DB
	workspaces workspaces.System
	tokens     *auth.Tokens
	oidc       auth.IDTokenVerifier
	cookieName string
	logger     *slog.Logger
}

// New creates a user repository implementing the System interface. A nil
// verifier disables OIDC sign-in.
func New(
	db *sql.DB,
	ws workspaces.System,
	tokens *auth.Tokens,
	oidc auth.IDTokenVerifier,
	cookieName string,
	logger *slog.Logger,
) System {
	return &repo{
		db:         db,
		workspaces: ws,
		tokens:     tokens,
		oidc:       oidc,
		cookieName: cookieName,
		logger:     logger.With("system", "users"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.cookieName, r.logger)
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	handle := strings.ToLower(cmd.UserHandle)
	u, err := r.insert(ctx, account{
		email:     strings.TrimSpace(cmd.Email),
		handle:    handle,
		name:      DisplayNameOr(cmd.DisplayName, handle),
		loginType: LoginLocal,
		hash:      string(hash),
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("user registered", "id", u.ID, "userid", u.UserHandle)
	return r.start(ctx, u)
}

func (r *repo) Login(ctx context.Context, cmd LoginCommand) (*Session, error) {
	u, err := r.findByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.passwordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.passwordHash), []byte(cmd.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return r.start(ctx, u)
}

// LoginOIDC verifies an external ID token and signs the matching user in,
// creating the account on first use.
func (r *repo) LoginOIDC(ctx context.Context, rawIDToken string) (*Session, error) {
	if r.oidc == nil {
		return nil, ErrOIDCDisabled
	}

	ext, err := r.oidc.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	u, err := r.findByEmail(ctx, ext.Email)
	if errors.Is(err, ErrNotFound) {
		u, err = r.createExternal(ctx, ext)
	}
	if err != nil {
		return nil, err
	}

	return r.start(ctx, u)
}

func (r *repo) createExternal(ctx context.Context, ext *auth.ExternalIdentity) (*User, error) {
	base := HandleFromEmail(ext.Email)
	handle := base

	for attempt := 0; attempt < maxHandleAttempts; attempt++ {
		u, err := r.insert(ctx, account{
			email:     ext.Email,
			handle:    handle,
			name:      DisplayNameOr(ext.Name, handle),
			loginType: LoginGoogle,
			avatar:    ext.Picture,
		})
		if err == nil {
			r.logger.Info("user created from oidc", "id", u.ID, "userid", u.UserHandle)
			return u, nil
		}
		if !errors.Is(err, ErrUserIDTaken) {
			return nil, err
		}
		handle = base + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	}

	return nil, ErrUserIDTaken
}

type account struct {
	email     string
	handle    string
	name      string
	loginType string
	hash      string
	avatar    string
}

func (r *repo) insert(ctx context.Context, a account) (*User, error) {
	var passwordHash *string
	if a.hash != "" {
		passwordHash = &a.hash
	}

	u, err := repository.QueryOne(ctx, r.db, `
		INSERT INTO users (email, userid, display_name, login_type, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		[]any{a.email, a.handle, a.name, a.loginType, passwordHash, a.avatar},
		scanUser,
	)
	if err != nil {
		if constraint, ok := repository.UniqueViolation(err); ok {
			switch constraint {
			case emailConstraint:
				return nil, ErrEmailTaken
			case handleConstraint:
				return nil, ErrUserIDTaken
			}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// start ensures the personal workspace exists and issues a session token.
func (r *repo) start(ctx context.Context, u *User) (*Session, error) {
	if _, err := r.workspaces.EnsurePersonal(ctx, u.ID, u.DisplayName); err != nil {
		return nil, fmt.Errorf("ensure personal workspace: %w", err)
	}

	token, expires, err := r.tokens.Issue(u.Identity())
	if err != nil {
		return nil, err
	}

	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

func (r *repo) findByEmail(ctx context.Context, email string) (*User, error) {
	u, err := repository.QueryOne(ctx, r.db,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)",
		[]any{strings.TrimSpace(email)},
		scanUser,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &u, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := repository.QueryOne(ctx, r.db,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		[]any{id},
		scanUser,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &u, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*User, error) {
	u, err := repository.QueryOne(ctx, r.db, `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			bio = COALESCE($3, bio),
			avatar_url = COALESCE($4, avatar_url),
			profile_public = COALESCE($5, profile_public),
			default_ai_model_id = COALESCE($6, default_ai_model_id),
			theme = COALESCE($7, theme),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		[]any{id, cmd.DisplayName, cmd.Bio, cmd.AvatarURL, cmd.ProfilePublic, cmd.DefaultAIModelID, cmd.Theme},
		scanUser,
	)
	if err != nil {
		if constraint, ok := repository.ForeignKeyViolation(err); ok && constraint == modelConstraint {
			return nil, ErrInvalidModel
		}
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("user updated", "id", id)
	return &u, nil
}

// Delete hard-deletes the account. Owned prompts, memberships and history
// go with it through cascading keys.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM users WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("user deleted", "id", id)
	return nil
}
