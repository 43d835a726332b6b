package prompts

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const starCountExpr = `(SELECT COUNT(*) FROM public.favorites f JOIN public.prompt_versions fv ON fv.id = f.prompt_version_id WHERE fv.prompt_id = p.id)`

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("owner_id", "OwnerID").
	Project("name", "Name").
	Project("description", "Description").
	Project("visibility", "Visibility").
	Project("latest_version_id", "LatestVersionID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	ProjectExpr(starCountExpr, "StarCount")

const (
	tagExists      = `SELECT 1 FROM public.prompt_tags pt JOIN public.tags t ON t.id = pt.tag_id WHERE pt.prompt_id = p.id AND t.name = $%d`
	categoryExists = `SELECT 1 FROM public.prompt_versions cv JOIN public.categories c ON c.id = cv.category_id WHERE cv.prompt_id = p.id AND c.code = $%d`
)

// Sort keywords accepted by List.
const (
	SortRecent  = "recent"
	SortStars   = "stars"
	SortPopular = "popular"
)

var sorts = map[string][]query.SortField{
	SortRecent: {
		{Field: "CreatedAt", Descending: true},
	},
	SortStars: {
		{Field: "StarCount", Descending: true},
		{Field: "CreatedAt", Descending: true},
	},
	SortPopular: {
		{Field: "StarCount", Descending: true},
		{Field: "CreatedAt", Descending: true},
	},
}

// Query holds the parsed list parameters. Visibility only applies when Mine
// is set; the global listing is always restricted to public prompts.
type Query struct {
	Mine       bool
	Visibility *Visibility
	Q          *string
	Tag        *string
	Category   *string
	Sort       string
	Page       pagination.PageRequest
}

// QueryFromValues parses list parameters: q, tag, category, owner=me,
// visibility, sort, page, limit.
func QueryFromValues(values url.Values, cfg pagination.Config) (Query, error) {
	page, err := pagination.ParsePageRequest(values, cfg)
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Mine: values.Get("owner") == "me",
		Sort: SortRecent,
		Page: page,
	}

	if s := strings.TrimSpace(values.Get("sort")); s != "" {
		if _, ok := sorts[s]; !ok {
			return Query{}, ErrInvalidSort
		}
		q.Sort = s
	}

	if v := values.Get("visibility"); v != "" {
		vis, err := ParseVisibility(v)
		if err != nil {
			return Query{}, err
		}
		q.Visibility = &vis
	}

	if s := strings.TrimSpace(values.Get("q")); s != "" {
		q.Q = &s
	}
	if s := strings.TrimSpace(values.Get("tag")); s != "" {
		q.Tag = &s
	}
	if s := strings.TrimSpace(values.Get("category")); s != "" {
		q.Category = &s
	}

	return q, nil
}

// Builder returns the list query for caller. The global listing forces
// visibility to public regardless of the other filters.
func (q Query) Builder(caller uuid.UUID) *query.Builder {
	b := query.NewBuilder(projection, sorts[SortRecent]...)

	if q.Mine {
		b.WhereEquals("OwnerID", caller)
		if q.Visibility != nil {
			b.WhereEquals("Visibility", string(*q.Visibility))
		}
	} else {
		b.WhereEquals("Visibility", string(VisibilityPublic))
	}

	b.WhereSearch(q.Q, "Name", "Description").
		WhereExists(tagExists, q.Tag).
		WhereExists(categoryExists, q.Category)

	if fields, ok := sorts[q.Sort]; ok {
		b.OrderByFields(fields)
	}
	return b
}

func scanItem(s repository.Scanner) (Item, error) {
	var it Item
	err := s.Scan(
		&it.ID,
		&it.OwnerID,
		&it.Name,
		&it.Description,
		&it.Visibility,
		&it.LatestVersionID,
		&it.CreatedAt,
		&it.UpdatedAt,
		&it.StarCount,
	)
	return it, err
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.Visibility,
		&p.LatestVersionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const promptColumns = `id, owner_id, name, description, visibility, latest_version_id, created_at, updated_at`

var versionProjection = query.
	NewProjectionMap("public", "prompt_versions", "v").
	Join("LEFT JOIN public.categories c ON c.id = v.category_id").
	Join("LEFT JOIN public.model_settings ms ON ms.prompt_version_id = v.id").
	Project("id", "ID").
	Project("prompt_id", "PromptID").
	Project("version_number", "VersionNumber").
	Project("commit_message", "CommitMessage").
	Project("content", "Content").
	Project("is_draft", "IsDraft").
	Project("revision", "Revision").
	Project("created_by", "CreatedBy").
	Project("category_id", "CategoryID").
	ProjectExpr("c.code", "CategoryCode").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	ProjectExpr("ms.ai_model_id", "AIModelID").
	ProjectExpr("ms.temperature", "Temperature").
	ProjectExpr("ms.max_token", "MaxToken").
	ProjectExpr("ms.top_p", "TopP").
	ProjectExpr("ms.frequency_penalty", "FrequencyPenalty").
	ProjectExpr("ms.presence_penalty", "PresencePenalty")

func scanVersion(s repository.Scanner) (Version, error) {
	var v Version
	var ms ModelSetting
	var modelID *int
	err := s.Scan(
		&v.ID,
		&v.PromptID,
		&v.VersionNumber,
		&v.CommitMessage,
		&v.Content,
		&v.IsDraft,
		&v.Revision,
		&v.CreatedBy,
		&v.CategoryID,
		&v.CategoryCode,
		&v.CreatedAt,
		&v.UpdatedAt,
		&modelID,
		&ms.Temperature,
		&ms.MaxToken,
		&ms.TopP,
		&ms.FrequencyPenalty,
		&ms.PresencePenalty,
	)
	if modelID != nil {
		ms.AIModelID = *modelID
		v.ModelSetting = &ms
	}
	return v, err
}

const modelSettingColumns = `ai_model_id, temperature, max_token, top_p, frequency_penalty, presence_penalty`

func scanModelSetting(s repository.Scanner) (ModelSetting, error) {
	var ms ModelSetting
	err := s.Scan(
		&ms.AIModelID,
		&ms.Temperature,
		&ms.MaxToken,
		&ms.TopP,
		&ms.FrequencyPenalty,
		&ms.PresencePenalty,
	)
	return ms, err
}

func scanCategory(s repository.Scanner) (Category, error) {
	var c Category
	err := s.Scan(&c.ID, &c.Code, &c.Name)
	return c, err
}

// NormalizeTags trims tag names and drops empty and repeated entries,
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
