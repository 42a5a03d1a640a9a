package sharedmimeinfo

import (
	"bufio"
	"io"
	"slices"
	"strings"
)

// parentTable is the directed subclass graph between MIME names: child -> direct parents.
// The relation forms a DAG; traversal must be protected by a visited set (see [DB.MimeTypeSubclass]).
type parentTable struct {
	parents map[string][]string
}

func newParentTable() *parentTable {
	return &parentTable{parents: make(map[string][]string)}
}

// add records that child is a direct subclass of parent. Duplicate edges collapse.
func (t *parentTable) add(child, parent string) {
	existing := t.parents[child]
	if slices.Contains(existing, parent) {
		return
	}

	t.parents[child] = append(existing, parent)
}

// directParents returns the direct parents of mimeType, or nil if none are recorded.
// Callers must not assume an ordering of the returned slice.
func (t *parentTable) directParents(mimeType string) []string {
	return t.parents[mimeType]
}

// readSubclasses parses the whitespace-separated `child parent` lines format. Blank and
// '#'-prefixed lines are skipped; lines that don't split into exactly two tokens are dropped.
func readSubclasses(r io.Reader) [][2]string {
	var result [][2]string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}

		result = append(result, [2]string{fields[0], fields[1]})
	}

	return result
}
