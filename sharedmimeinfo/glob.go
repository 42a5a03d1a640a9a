package sharedmimeinfo

import (
	"bufio"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// globKind classifies a glob pattern by the shape of wildcard it uses. The kind determines the
// matching strategy only; when several patterns match the same name they are ordered by weight
// alone, whatever their kind.
type globKind int

const (
	// globLiteral patterns contain no wildcard characters and must match the whole file name
	// exactly, e.g. "Makefile".
	globLiteral globKind = iota
	// globSuffix patterns have the shape "*" followed by a suffix containing no further
	// wildcards, the common case for extension-based matching, e.g. "*.tar.gz", but also
	// "*~" or "*,v".
	globSuffix
	// globFull patterns contain '[', ']', '\' or an interior '*'/'?' and require a real glob
	// engine.
	globFull
)

// globEntry is a single line of a globs2-format file: a weighted, optionally case-sensitive
// pattern mapped to a MIME type.
type globEntry struct {
	mimeType      string
	pattern       string
	weight        int
	caseSensitive bool
	kind          globKind
	suffix        string // lowercased, populated only when kind == globSuffix
}

func newGlobEntry(mimeType, pattern string, weight int, caseSensitive bool) globEntry {
	e := globEntry{
		mimeType:      mimeType,
		pattern:       pattern,
		weight:        weight,
		caseSensitive: caseSensitive,
		kind:          classifyGlob(pattern),
	}
	if e.kind == globSuffix {
		e.suffix = strings.ToLower(pattern[1:])
	}

	return e
}

// classifyGlob determines the shape of a glob pattern. A pattern is "full" as soon as it
// contains '[', ']', '\', or a '*'/'?' that isn't the single leading '*' of a suffix pattern.
func classifyGlob(pattern string) globKind {
	if strings.ContainsAny(pattern, `[]\`) {
		return globFull
	}

	if strings.HasPrefix(pattern, "*") && !strings.ContainsAny(pattern[1:], "*?") {
		return globSuffix
	}

	if strings.ContainsAny(pattern, "*?") {
		return globFull
	}

	return globLiteral
}

// matches reports whether fileName (the base name of a path, never a directory component) is
// matched by this glob entry.
func (e globEntry) matches(fileName string) bool {
	switch e.kind {
	case globLiteral:
		if e.caseSensitive {
			return fileName == e.pattern
		}
		return strings.EqualFold(fileName, e.pattern)
	case globSuffix:
		if e.caseSensitive {
			return strings.HasSuffix(fileName, e.pattern[1:])
		}
		return strings.HasSuffix(strings.ToLower(fileName), e.suffix)
	default:
		// Full-kind patterns are always matched case-sensitively, regardless of the entry's
		// case-sensitivity flag: the reference implementation's compare() never consults
		// case_sensitive for this branch.
		ok, err := doublestar.Match(e.pattern, fileName)
		return err == nil && ok
	}
}

// globTable is the full, unsorted collection of glob entries loaded from all directories.
type globTable struct {
	entries []globEntry
}

func newGlobTable() *globTable {
	return &globTable{}
}

func (t *globTable) add(e globEntry) {
	t.entries = append(t.entries, e)
}

// matchingMimeTypes returns the MIME types whose globs match fileName's base name, sorted by
// ascending weight. This mirrors the reference implementation's
// `matching_globs.sort_by(|a, b| a.weight.cmp(&b.weight))` exactly, including its lack of any
// secondary tie-break, so the highest-weight match is the last element. It returns nil when no
// glob matches.
func (t *globTable) matchingMimeTypes(fileName string) []string {
	base := filepath.Base(fileName)

	var matched []globEntry
	for _, e := range t.entries {
		if e.matches(base) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].weight < matched[j].weight
	})

	result := make([]string, 0, len(matched))
	seen := make(map[string]bool, len(matched))
	for _, e := range matched {
		if seen[e.mimeType] {
			continue
		}
		seen[e.mimeType] = true
		result = append(result, e.mimeType)
	}

	return result
}

const defaultGlobWeight = 50

// readGlobs2 parses the globs2 format: "weight:mime:pattern[:cs]". The trailing "cs" flag marks
// a case-sensitive pattern; its absence means case-insensitive matching.
func readGlobs2(r io.Reader) []globEntry {
	var result []globEntry

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, ":", 4)
		if len(fields) < 3 {
			continue
		}

		weight, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		mimeType, pattern := fields[1], fields[2]
		if mimeType == "" || pattern == "" {
			continue
		}

		caseSensitive := len(fields) == 4 && strings.TrimSpace(fields[3]) == "cs"
		result = append(result, newGlobEntry(mimeType, pattern, weight, caseSensitive))
	}

	return result
}

// readGlobs parses the legacy globs format: "mime:pattern", always case-insensitive and always
// at the default weight. Used only when a directory has no globs2 file.
func readGlobs(r io.Reader) []globEntry {
	var result []globEntry

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		mimeType, pattern, found := strings.Cut(line, ":")
		if !found || mimeType == "" || pattern == "" {
			continue
		}

		result = append(result, newGlobEntry(mimeType, pattern, defaultGlobWeight, false))
	}

	return result
}
