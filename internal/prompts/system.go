package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
)

// System defines the public contract for the prompt/version aggregate.
// Every mutation is owner-only; reads go through the access resolver.
type System interface {
	Handler() *Handler

	List(ctx context.Context, userID uuid.UUID, q Query) (*pagination.PageResult[Item], error)
	Find(ctx context.Context, userID, id uuid.UUID) (*Item, error)
	Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*CreateResult, error)
	Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	ListVersions(ctx context.Context, userID, promptID uuid.UUID) ([]Version, error)
	FindVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) (*Version, error)
	CreateVersion(ctx context.Context, userID, promptID uuid.UUID, cmd VersionCommand) (*Version, error)
	UpdateVersion(ctx context.Context, userID, promptID, versionID uuid.UUID, cmd UpdateVersionCommand) (*Version, error)
	DeleteVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) error
	UpdateModelSetting(ctx context.Context, userID, promptID, versionID uuid.UUID, patch ModelSettingPatch) (*ModelSetting, error)

	Categories(ctx context.Context) ([]Category, error)
}
