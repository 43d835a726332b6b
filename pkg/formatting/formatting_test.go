package formatting_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"512B", 512, false},
		{"10mb", 10 * 1024 * 1024, false},
		{" 5 MB ", 5 * 1024 * 1024, false},
		{"1GB", 1 << 30, false},
		{"", 0, true},
		{"50XX", 0, true},
		{"MB", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0 B"},
		{500, 0, "500 B"},
		{1536 * 1024, 1, "1.5 MB"},
		{1024, -1, "1 KB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
		if tt.precision == 0 && tt.n > 0 {
			back, err := formatting.ParseBytes(tt.want)
			if err != nil || back != tt.n {
				t.Errorf("round trip %q = %d, %v", tt.want, back, err)
			}
		}
	}
}

func TestParse(t *testing.T) {
	type answer struct {
		Title string `json:"title"`
		Score int    `json:"score"`
	}

	tests := []struct {
		name    string
		input   string
		want    answer
		wantErr bool
	}{
		{"direct", `{"title":"a","score":1}`, answer{"a", 1}, false},
		{"fenced", "```json\n{\"title\":\"b\",\"score\":2}\n```", answer{"b", 2}, false},
		{"fenced with prose", "Result:\n```\n{\"title\":\"c\",\"score\":3}\n```\nthanks", answer{"c", 3}, false},
		{"plain text", "not json", answer{}, true},
		{"broken fence", "```json\n{oops\n```", answer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[answer](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("err = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := formatting.Placeholders("Translate {{text}} into {{ lang }}. Keep {{text}} short. {{9bad}} {single}")
	want := []string{"text", "lang"}
	if !slices.Equal(got, want) {
		t.Errorf("Placeholders = %v, want %v", got, want)
	}

	if got := formatting.Placeholders("no variables"); len(got) != 0 {
		t.Errorf("Placeholders = %v, want none", got)
	}
}

func TestRender(t *testing.T) {
	rendered, missing := formatting.Render(
		"Hello {{name}}, reply in {{lang}} about {{topic}} and {{ topic }}.",
		map[string]string{"name": "Ada", "lang": "Korean"},
	)

	if rendered != "Hello Ada, reply in Korean about {{topic}} and {{ topic }}." {
		t.Errorf("rendered = %q", rendered)
	}
	if !slices.Equal(missing, []string{"topic"}) {
		t.Errorf("missing = %v, want [topic]", missing)
	}
}
