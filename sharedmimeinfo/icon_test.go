package sharedmimeinfo

import (
	"strings"
	"testing"
)

func TestIconTableFirstWins(t *testing.T) {
	tbl := newIconTable()
	tbl.add("text/rust", "rust-icon")
	tbl.add("text/rust", "ignored-icon")

	got, ok := tbl.lookup("text/rust")
	if !ok || got != "rust-icon" {
		t.Fatalf("lookup() = (%q, %v), want (rust-icon, true)", got, ok)
	}
}

func TestIconTableUnknown(t *testing.T) {
	tbl := newIconTable()
	if _, ok := tbl.lookup("text/rust"); ok {
		t.Fatalf("expected lookup of unknown MIME to report false")
	}
}

func TestReadIcons(t *testing.T) {
	input := `# a comment
text/rust:rust-icon

image/png:png-icon
malformed-line-no-colon
empty-name:
`
	got := readIcons(strings.NewReader(input))

	want := [][2]string{
		{"image/png", "png-icon"},
		{"text/rust", "rust-icon"},
	}

	if len(got) != len(want) {
		t.Fatalf("readIcons() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("readIcons()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
