package sharedmimeinfo

import (
	"bufio"
	"io"
	"strings"
)

// aliasTable maps a deprecated or vendor MIME name to its canonical name. It is a finite,
// forward-only relation: cycles and chains are not followed, only the stored hop.
type aliasTable struct {
	toCanonical map[string]string
}

func newAliasTable() *aliasTable {
	return &aliasTable{toCanonical: make(map[string]string)}
}

// add records alias -> canonical. The first directory to define an alias wins, matching the
// loader's first-insertion-order precedence (spec §4.7.4).
func (t *aliasTable) add(alias, canonical string) {
	if _, ok := t.toCanonical[alias]; ok {
		return
	}

	t.toCanonical[alias] = canonical
}

// unalias returns the canonical MIME for alias, one hop only, and whether alias was known.
func (t *aliasTable) unalias(alias string) (string, bool) {
	canonical, ok := t.toCanonical[alias]
	return canonical, ok
}

// readAliases parses the whitespace-separated `alias canonical` lines format. Blank and
// '#'-prefixed lines are skipped; lines that don't split into exactly two tokens are dropped.
func readAliases(r io.Reader) map[string]string {
	result := make(map[string]string)

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

		if _, ok := result[fields[0]]; !ok {
			result[fields[0]] = fields[1]
		}
	}

	return result
}
