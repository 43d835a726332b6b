package formatting

import (
	"regexp"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Placeholders returns the distinct {{name}} variables in text in order of
// first appearance.
func Placeholders(text string) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, m := range placeholderRegex.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes {{name}} placeholders with values from vars. Placeholders
// without a value are left in place and reported in missing.
func Render(text string, vars map[string]string) (rendered string, missing []string) {
	missingSet := make(map[string]bool)
	rendered = placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := vars[name]; ok {
			return v
		}
		if !missingSet[name] {
			missingSet[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return rendered, missing
}
