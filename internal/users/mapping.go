package users

import (
	"regexp"
	"strings"

	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const userColumns = `id, email, userid, display_name, login_type, is_admin, bio, avatar_url,
	profile_public, default_ai_model_id, theme, created_at, updated_at, password_hash`

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.UserHandle,
		&u.DisplayName,
		&u.LoginType,
		&u.IsAdmin,
		&u.Bio,
		&u.AvatarURL,
		&u.ProfilePublic,
		&u.DefaultAIModelID,
		&u.Theme,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.passwordHash,
	)
	return u, err
}

var nonHandle = regexp.MustCompile(`[^a-z0-9]`)

// HandleFromEmail derives a userid candidate from the local part of an email.
func HandleFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	h := nonHandle.ReplaceAllString(local, "")
	if len(h) > 24 {
		h = h[:24]
	}
	for len(h) < 3 {
		h += "0"
	}
	return h
}

// DisplayNameOr returns name when set and the userid otherwise.
func DisplayNameOr(name, handle string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return handle
}
