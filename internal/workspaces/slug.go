package workspaces

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	invalidSlug = regexp.MustCompile(`[^a-z0-9-]`)
	hyphens     = regexp.MustCompile(`-{2,}`)
)

const fallbackSlug = "workspace"

// Slugify lowercases name, turns whitespace into hyphens, strips anything
// outside [a-z0-9-], collapses repeated hyphens, and trims them from the ends.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespace.ReplaceAllString(s, "-")
	s = invalidSlug.ReplaceAllString(s, "")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is already in slug form.
func ValidSlug(s string) bool {
	return s != "" && Slugify(s) == s
}

// Candidate returns the n-th slug candidate for base: base itself, then
// base-2, base-3, and so on.
func Candidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func slugBase(name string) string {
	if base := Slugify(name); base != "" {
		return base
	}
	return fallbackSlug
}

func newInviteToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// EffectiveRole resolves a user's role in a workspace. The creator of a
// personal workspace is always admin; otherwise the membership role applies.
func EffectiveRole(kind Kind, createdBy, userID uuid.UUID, member *Role) *Role {
	if kind == KindPersonal && createdBy == userID {
		admin := RoleAdmin
		return &admin
	}
	return member
}
