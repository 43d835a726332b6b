package query_test

import (
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
)

const starExpr = "(SELECT COUNT(*) FROM public.favorites f WHERE f.prompt_id = p.id)"

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "prompts", "p").
		Project("id", "id").
		Project("name", "name").
		Project("created_at", "createdAt").
		ProjectExpr(starExpr, "starCount")
}

const selectPrefix = "SELECT p.id, p.name, p.created_at, " + starExpr + " FROM public.prompts p"

func ptr(s string) *string { return &s }

func TestProjectionMap(t *testing.T) {
	p := testProjection()

	if got := p.Table(); got != "public.prompts p" {
		t.Errorf("Table() = %q", got)
	}

	tests := []struct {
		name     string
		viewName string
		want     string
		has      bool
	}{
		{"mapped field", "name", "p.name", true},
		{"mapped camel", "createdAt", "p.created_at", true},
		{"expression", "starCount", starExpr, true},
		{"unmapped passthrough", "unknown", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
			if got := p.Has(tt.viewName); got != tt.has {
				t.Errorf("Has(%q) = %v, want %v", tt.viewName, got, tt.has)
			}
		})
	}
}

func TestProjectionMapJoin(t *testing.T) {
	p := query.NewProjectionMap("public", "workspace_prompts", "wp").
		Join("JOIN public.prompts p ON p.id = wp.prompt_id").
		Project("prompt_id", "promptId")

	want := "public.workspace_prompts wp JOIN public.prompts p ON p.id = wp.prompt_id"
	if got := p.From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty string", "", nil},
		{"single ascending", "name", []query.SortField{{Field: "name"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with spaces",
			" name , -createdAt ",
			[]query.SortField{{Field: "name"}, {Field: "createdAt", Descending: true}},
		},
		{
			"empty parts skipped",
			"name,,createdAt",
			[]query.SortField{{Field: "name"}, {Field: "createdAt"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, []any)
		wantSQL  string
		wantArgs int
	}{
		{
			name:    "plain select",
			build:   query.NewBuilder(testProjection()).Build,
			wantSQL: selectPrefix,
		},
		{
			name:    "count",
			build:   query.NewBuilder(testProjection()).BuildCount,
			wantSQL: "SELECT COUNT(*) FROM public.prompts p",
		},
		{
			name: "page with default sort",
			build: func() (string, []any) {
				return query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true}).BuildPage(3, 10)
			},
			wantSQL: selectPrefix + " ORDER BY p.created_at DESC LIMIT 10 OFFSET 20",
		},
		{
			name: "single",
			build: func() (string, []any) {
				return query.NewBuilder(testProjection()).BuildSingle("id", "abc")
			},
			wantSQL:  selectPrefix + " WHERE p.id = $1",
			wantArgs: 1,
		},
		{
			name: "equals and search renumber",
			build: query.NewBuilder(testProjection()).
				WhereEquals("name", "A").
				WhereSearch(ptr("b"), "name").
				Build,
			wantSQL:  selectPrefix + " WHERE p.name = $1 AND (p.name ILIKE $2)",
			wantArgs: 2,
		},
		{
			name: "nil and empty filters skipped",
			build: query.NewBuilder(testProjection()).
				WhereEquals("name", nil).
				WhereSearch(nil, "name").
				WhereSearch(ptr(""), "name").
				WhereExists("SELECT 1 FROM t WHERE t.id = $%d", nil).
				Build,
			wantSQL: selectPrefix,
		},
		{
			name:     "search across fields",
			build:    query.NewBuilder(testProjection()).WhereSearch(ptr("x"), "name", "id").Build,
			wantSQL:  selectPrefix + " WHERE (p.name ILIKE $1 OR p.id ILIKE $2)",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build()
			if sql != tt.wantSQL {
				t.Errorf("sql = %q\nwant  %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d args", args, tt.wantArgs)
			}
		})
	}
}

func TestBuilderWhereExists(t *testing.T) {
	tag := "go"
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("name", "A").
		WhereExists("SELECT 1 FROM public.prompt_tags pt JOIN public.tags t ON t.id = pt.tag_id WHERE pt.prompt_id = p.id AND t.name = $%d", &tag).
		Build()

	want := selectPrefix + " WHERE p.name = $1 AND EXISTS (SELECT 1 FROM public.prompt_tags pt JOIN public.tags t ON t.id = pt.tag_id WHERE pt.prompt_id = p.id AND t.name = $2)"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2", args)
	}

	var missing *string
	sql, _ = query.NewBuilder(testProjection()).WhereExists("SELECT 1 WHERE $%d", missing).Build()
	if sql != selectPrefix {
		t.Errorf("nil arg should skip condition, got %q", sql)
	}
}

func TestBuilderOrderByAllowList(t *testing.T) {
	tests := []struct {
		name   string
		fields []query.SortField
		want   string
	}{
		{
			name:   "expression and tiebreak",
			fields: []query.SortField{{Field: "starCount", Descending: true}, {Field: "createdAt", Descending: true}},
			want:   selectPrefix + " ORDER BY " + starExpr + " DESC, p.created_at DESC",
		},
		{
			name:   "unmapped field dropped",
			fields: []query.SortField{{Field: "name; DROP TABLE prompts", Descending: true}, {Field: "name"}},
			want:   selectPrefix + " ORDER BY p.name ASC",
		},
		{
			name:   "all unmapped yields no order",
			fields: []query.SortField{{Field: "bogus"}},
			want:   selectPrefix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(testProjection()).OrderByFields(tt.fields).Build()
			if sql != tt.want {
				t.Errorf("sql = %q\nwant  %q", sql, tt.want)
			}
		})
	}
}
