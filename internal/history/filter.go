package history

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

// DefaultSourcePattern matches TypeScript and JavaScript sources.
const DefaultSourcePattern = `.*\.ts$|.*\.tsx$|.*\.js$|.*\.jsx$`

// Filter restricts the paths of a commit. A path is kept when it fully
// matches Pattern (if set), matches one of Include (if any) and matches none
// of Exclude. Include and Exclude are doublestar globs ("src/**/*.ts").
type Filter struct {
	pattern *regexp.Regexp
	raw     string
	include []string
	exclude []string
}

// NewFilter compiles a filter. An empty pattern disables the regex check.
func NewFilter(pattern string, include, exclude []string) (*Filter, error) {
	f := &Filter{raw: pattern}

	if pattern != "" {
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, apperrors.ValidationErrorf("invalid source pattern %q: %v", pattern, err)
		}
		f.pattern = re
	}

	for _, g := range include {
		if !doublestar.ValidatePattern(g) {
			return nil, apperrors.ValidationErrorf("invalid include glob %q", g)
		}
	}
	for _, g := range exclude {
		if !doublestar.ValidatePattern(g) {
			return nil, apperrors.ValidationErrorf("invalid exclude glob %q", g)
		}
	}
	f.include = append([]string(nil), include...)
	f.exclude = append([]string(nil), exclude...)

	return f, nil
}

// Match reports whether path passes the filter. A nil filter keeps everything.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}
	if f.pattern != nil && !f.pattern.MatchString(path) {
		return false
	}
	if len(f.include) > 0 && !matchAny(f.include, path) {
		return false
	}
	return !matchAny(f.exclude, path)
}

// Apply returns c restricted to matching paths. The input is not modified.
func (f *Filter) Apply(c Commit) Commit {
	if f == nil {
		return c
	}
	files := make([]string, 0, len(c.Files))
	for _, p := range c.Files {
		if f.Match(p) {
			files = append(files, p)
		}
	}
	c.Files = files
	return c
}

// Signature identifies the filter in cache keys.
func (f *Filter) Signature() string {
	if f == nil {
		return "none"
	}
	return f.raw + "|+" + strings.Join(f.include, ",") + "|-" + strings.Join(f.exclude, ",")
}

func matchAny(globs []string, path string) bool {
	for _, g := range globs {
		// Patterns were validated in NewFilter.
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}
