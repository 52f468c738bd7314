package history

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

const (
	// headerPrefix marks the first line of every commit in the log output.
	// git always quotes control characters in paths, so no path line can
	// start with it.
	headerPrefix = "\x1e"
	valueSep     = ";"

	// LogFormat is the --pretty format the parser understands.
	LogFormat = "%x1e%H" + valueSep + "%ae" + valueSep + "%at"
)

// Parse reads `git log --name-only --pretty=format:LogFormat` output from r
// and calls emit once per commit, in log order. Nothing beyond the current
// commit is buffered.
func Parse(r io.Reader, loc *time.Location, emit func(Commit) error) error {
	scanner := bufio.NewScanner(r)
	// Paths can be long; the default 64KB token limit is not enough for
	// some generated files.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Commit
	seen := make(map[string]struct{})
	lineNo := 0

	flush := func() error {
		if current == nil {
			return nil
		}
		c := *current
		current = nil
		return emit(c)
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, headerPrefix) {
			if err := flush(); err != nil {
				return err
			}
			c, err := parseHeader(strings.TrimPrefix(line, headerPrefix), loc)
			if err != nil {
				return err.WithContext("line", lineNo)
			}
			current = &c
			seen = make(map[string]struct{})
			continue
		}

		if current == nil {
			return apperrors.ValidationErrorf("unexpected path %q before first commit header", line).
				WithContext("line", lineNo)
		}
		path := unquotePath(line)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		current.Files = append(current.Files, path)
	}

	if err := scanner.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeGit, apperrors.SeverityCritical, "scanning git log output")
	}
	return flush()
}

// unquotePath undoes git's C-style quoting ("src/caf\303\251.ts"), which
// git still applies to quotes, backslashes and control characters when
// core.quotePath is off. Lines that do not unquote are kept as they are.
func unquotePath(line string) string {
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return line
	}
	if path, err := strconv.Unquote(line); err == nil {
		return path
	}
	return line
}

// ParseAll is Parse collecting every commit into a slice.
func ParseAll(r io.Reader, loc *time.Location) ([]Commit, error) {
	var commits []Commit
	err := Parse(r, loc, func(c Commit) error {
		commits = append(commits, c)
		return nil
	})
	return commits, err
}

// parseHeader parses "<hash>;<email>;<unix seconds>". The e-mail is taken as
// everything between the first and the last separator.
func parseHeader(header string, loc *time.Location) (Commit, *apperrors.Error) {
	first := strings.Index(header, valueSep)
	last := strings.LastIndex(header, valueSep)
	if first <= 0 || first == last {
		return Commit{}, apperrors.ValidationErrorf("malformed commit header %q", header)
	}

	id := header[:first]
	author := header[first+1 : last]
	secs, err := strconv.ParseInt(strings.TrimSpace(header[last+1:]), 10, 64)
	if err != nil {
		return Commit{}, apperrors.ValidationErrorf("malformed timestamp in commit header %q", header)
	}

	return Commit{
		ID:     id,
		Author: author,
		Day:    DayOf(time.Unix(secs, 0), loc),
	}, nil
}
