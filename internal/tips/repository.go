package tips

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
	"github.com/yumina0616/PromptLab-sub000/pkg/storage"
)

const maxKeywords = 8

type repo struct {
	db         *sql.DB
	storage    storage.System
	embedder   providers.Embedder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a tips repository implementing the System interface.
// A nil embedder disables semantic retrieval and leaves embeddings NULL.
func New(
	db *sql.DB,
	store storage.System,
	embedder providers.Embedder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		embedder:   embedder,
		logger:     logger.With("system", "tips"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, q Query) (*pagination.PageResult[Tip], error) {
	page := q.Page
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Body").
		WhereExists("SELECT 1 FROM unnest(t.tags) tag WHERE tag = $%d", q.Tag)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tips: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.Limit)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTip)
	if err != nil {
		return nil, fmt.Errorf("query tips: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.Limit)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Tip, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTip)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &t, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Tip, error) {
	t, err := r.insert(ctx, cmd, nil)
	if err != nil {
		return nil, err
	}

	r.logger.Info("tip created", "id", t.ID, "embedded", t.Embedded)
	return t, nil
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Tip, error) {
	if len(bytes.TrimSpace(cmd.Data)) == 0 || !utf8.Valid(cmd.Data) || !isText(cmd.ContentType, cmd.Filename) {
		return nil, ErrInvalidFile
	}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(cmd.Filename), filepath.Ext(cmd.Filename))
	}

	key := buildStorageKey(uuid.New(), sanitizeFilename(cmd.Filename))
	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload tip source: %w", err)
	}

	t, err := r.insert(ctx, CreateCommand{
		Title: title,
		Body:  string(cmd.Data),
		Tags:  cmd.Tags,
	}, &key)
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	r.logger.Info("tip uploaded", "id", t.ID, "key", key, "size", len(cmd.Data))
	return t, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM tips WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	if t.StorageKey != nil {
		if delErr := r.storage.Delete(ctx, *t.StorageKey); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", *t.StorageKey, "error", delErr)
		}
	}

	r.logger.Info("tip deleted", "id", id)
	return nil
}

func (r *repo) Source(ctx context.Context, id uuid.UUID) (*Document, error) {
	t, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.StorageKey == nil {
		return nil, ErrNoSource
	}

	body, err := r.storage.Download(ctx, *t.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download tip source: %w", err)
	}

	name, err := url.PathUnescape(path.Base(*t.StorageKey))
	if err != nil {
		name = path.Base(*t.StorageKey)
	}
	return &Document{Body: body, Filename: name}, nil
}

func (r *repo) Suggest(ctx context.Context, cmd SuggestCommand) ([]Suggestion, error) {
	limit := cmd.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	suggestions := make([]Suggestion, 0, limit)
	seen := make(map[uuid.UUID]bool)

	if r.embedder != nil {
		semantic, err := r.semantic(ctx, cmd.Text, limit)
		if err != nil {
			r.logger.Warn("semantic tip lookup failed, using keywords", "error", err)
		}
		for _, s := range semantic {
			seen[s.Tip.ID] = true
			suggestions = append(suggestions, s)
		}
	}

	if len(suggestions) >= limit {
		return suggestions, nil
	}

	keyword, err := r.keyword(ctx, cmd.Text, limit)
	if err != nil {
		return nil, err
	}
	for _, s := range keyword {
		if len(suggestions) >= limit {
			break
		}
		if seen[s.Tip.ID] {
			continue
		}
		seen[s.Tip.ID] = true
		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}

func (r *repo) semantic(ctx context.Context, text string, limit int) ([]Suggestion, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT %s, t.embedding <=> $1::vector AS distance
		FROM %s
		WHERE t.embedding IS NOT NULL
		ORDER BY distance
		LIMIT $2`,
		projection.Columns(), projection.From(),
	)

	return repository.QueryMany(ctx, r.db, q, []any{pgvector.NewVector(vec), limit},
		func(s repository.Scanner) (Suggestion, error) {
			var d float64
			t, err := scanTip(distanceScanner{s, &d})
			return Suggestion{Tip: t, Match: MatchSemantic, Distance: &d}, err
		},
	)
}

func (r *repo) keyword(ctx context.Context, text string, limit int) ([]Suggestion, error) {
	words := Keywords(text, maxKeywords)
	if len(words) == 0 {
		return nil, nil
	}

	patterns := make([]string, len(words))
	for i, w := range words {
		patterns[i] = "%" + w + "%"
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE t.title ILIKE ANY($1::text[]) OR t.body ILIKE ANY($1::text[]) OR t.tags && $2::text[]
		ORDER BY (
			SELECT COUNT(*) FROM unnest($1::text[]) k WHERE t.title ILIKE k OR t.body ILIKE k
		) DESC, t.created_at DESC
		LIMIT $3`,
		projection.Columns(), projection.From(),
	)

	tips, err := repository.QueryMany(ctx, r.db, q, []any{patterns, words, limit}, scanTip)
	if err != nil {
		return nil, fmt.Errorf("keyword tip lookup: %w", err)
	}

	out := make([]Suggestion, len(tips))
	for i, t := range tips {
		out[i] = Suggestion{Tip: t, Match: MatchKeyword}
	}
	return out, nil
}

func (r *repo) insert(ctx context.Context, cmd CreateCommand, key *string) (*Tip, error) {
	var embedding any
	if r.embedder != nil {
		vec, err := r.embedder.Embed(ctx, cmd.Title+"\n\n"+cmd.Body)
		if err != nil {
			r.logger.Warn("tip embedding failed, storing without vector", "error", err)
		} else {
			embedding = pgvector.NewVector(vec)
		}
	}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Tip, error) {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO tips (title, body, tags, storage_key, embedding)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			strings.TrimSpace(cmd.Title), cmd.Body, normalizeTags(cmd.Tags), key, embedding,
		).Scan(&id); err != nil {
			return Tip{}, fmt.Errorf("insert tip: %w", err)
		}

		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, scanTip)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// distanceScanner appends a trailing distance column to a tip scan.
type distanceScanner struct {
	repository.Scanner
	distance *float64
}

func (d distanceScanner) Scan(dest ...any) error {
	return d.Scanner.Scan(append(dest, d.distance)...)
}

func isText(contentType, filename string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("tips/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "tip.md"
	}
	return url.PathEscape(name)
}
