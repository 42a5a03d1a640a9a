package sharedmimeinfo

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestMagicRuleMatchesDataOffsetRange(t *testing.T) {
	rule := magicRule{
		startOffset: 1,
		value:       []byte("hello"),
		rangeLength: 3,
	}

	cases := []struct {
		data    string
		matches bool
	}{
		{"1hello world", true},
		{"123hello world", true},
		{"hello world", false},
		{"1234hello world", false},
	}

	for _, tt := range cases {
		if got := rule.matchesData([]byte(tt.data)); got != tt.matches {
			t.Errorf("matchesData(%q) = %v, want %v", tt.data, got, tt.matches)
		}
	}
}

func TestMagicRuleMatchesDataWithMask(t *testing.T) {
	rule := magicRule{
		value: []byte{0xf0, 0x0f},
		mask:  []byte{0xf0, 0x0f},
		rangeLength: 1,
	}

	if !rule.matchesData([]byte{0xff, 0xff}) {
		t.Errorf("expected masked comparison to match")
	}
	if rule.matchesData([]byte{0x0f, 0xf0}) {
		t.Errorf("expected masked comparison to reject complementary bytes")
	}
}

func TestMagicRuleExtent(t *testing.T) {
	rule := magicRule{startOffset: 1, value: []byte("hello"), rangeLength: 3}
	if got, want := rule.extent(), 1+5+3; got != want {
		t.Errorf("extent() = %d, want %d", got, want)
	}
}

// TestMagicEntryMatchesRootToLeafPath exercises the indent tree-walk: a match only counts once
// every ancestor at a shallower indent has already matched.
func TestMagicEntryMatchesRootToLeafPath(t *testing.T) {
	entry := magicEntry{
		mimeType: "application/x-yaml",
		priority: 50,
		rules: []magicRule{
			{indent: 0, value: []byte("root"), rangeLength: 1},
			{indent: 1, startOffset: 4, value: []byte("leaf"), rangeLength: 1},
		},
	}

	mt, priority, ok := entry.matches([]byte("rootleaf"))
	if !ok || mt != "application/x-yaml" || priority != 50 {
		t.Fatalf("matches() = (%q, %d, %v), want (application/x-yaml, 50, true)", mt, priority, ok)
	}

	if _, _, ok := entry.matches([]byte("leafonly")); ok {
		t.Errorf("expected entry not to match when the root rule never fires")
	}
}

func TestMagicEntryMatchesSiblingFallback(t *testing.T) {
	// Two root-level alternatives; only the second matches.
	entry := magicEntry{
		mimeType: "text/x-thing",
		priority: 60,
		rules: []magicRule{
			{indent: 0, value: []byte("AAAA"), rangeLength: 1},
			{indent: 0, value: []byte("BBBB"), rangeLength: 1},
		},
	}

	mt, _, ok := entry.matches([]byte("BBBB"))
	if !ok || mt != "text/x-thing" {
		t.Fatalf("matches() = (%q, _, %v), want (text/x-thing, true)", mt, ok)
	}
}

func TestMagicDBLookupPriorityOrder(t *testing.T) {
	db := newMagicDB()
	db.addEntries([]magicEntry{
		{mimeType: "image/svg+xml", priority: 80, rules: []magicRule{{indent: 0, value: []byte("<svg"), rangeLength: 1}}},
		{mimeType: "text/x-generic", priority: 20, rules: []magicRule{{indent: 0, value: []byte("<"), rangeLength: 1}}},
	})

	mt, priority, ok := db.lookup([]byte("<svg xmlns..."))
	if !ok || mt != "image/svg+xml" || priority != 80 {
		t.Fatalf("lookup() = (%q, %d, %v), want (image/svg+xml, 80, true)", mt, priority, ok)
	}
}

func buildMagicRuleBytes(indent, offset uint32, value, mask []byte, wordSize int, rangeLength uint32) []byte {
	var buf bytes.Buffer
	if indent != 0 {
		buf.WriteString(itoa(indent))
	}
	buf.WriteByte('>')
	buf.WriteString(itoa(offset))
	buf.WriteByte('=')

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(value)))
	buf.Write(lenBuf[:])
	buf.Write(value)

	if mask != nil {
		buf.WriteByte('&')
		buf.Write(mask)
	}
	if wordSize != 1 {
		buf.WriteByte('~')
		buf.WriteString(itoa(uint32(wordSize)))
	}
	if rangeLength != 1 {
		buf.WriteByte('+')
		buf.WriteString(itoa(rangeLength))
	}
	buf.WriteByte('\n')

	return buf.Bytes()
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestParseMagicFileRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magicHeader)
	buf.WriteString("[50:application/x-yaml]\n")
	buf.Write(buildMagicRuleBytes(0, 0, []byte("%YAML"), nil, 1, 1))
	buf.WriteString("[80:image/svg+xml]\n")
	buf.Write(buildMagicRuleBytes(0, 1, []byte("<svg"), nil, 1, 3))

	entries, err := parseMagicFile(buf.Bytes())
	if err != nil {
		t.Fatalf("parseMagicFile() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("parseMagicFile() returned %d entries, want 2", len(entries))
	}

	if entries[0].mimeType != "application/x-yaml" || entries[0].priority != 50 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].mimeType != "image/svg+xml" || entries[1].priority != 80 {
		t.Errorf("entries[1] = %+v", entries[1])
	}

	mt, priority, ok := entries[1].matches([]byte("1<svg>"))
	if !ok || mt != "image/svg+xml" || priority != 80 {
		t.Errorf("entries[1].matches() = (%q, %d, %v)", mt, priority, ok)
	}
}

func TestParseMagicFileRejectsMissingHeader(t *testing.T) {
	if _, err := parseMagicFile([]byte("not a magic file")); err == nil {
		t.Errorf("expected an error for a missing MIME-Magic header")
	}
}

func TestParseMagicFileWithMaskAndWordSize(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magicHeader)
	buf.WriteString("[50:application/x-masked]\n")
	buf.Write(buildMagicRuleBytes(0, 0, []byte{0xf0, 0x0f}, []byte{0xf0, 0x0f}, 2, 1))

	entries, err := parseMagicFile(buf.Bytes())
	if err != nil {
		t.Fatalf("parseMagicFile() error = %v", err)
	}
	rule := entries[0].rules[0]
	if rule.wordSize != 2 {
		t.Errorf("wordSize = %d, want 2", rule.wordSize)
	}
	if !rule.matchesData([]byte{0xff, 0xff}) {
		t.Errorf("expected masked rule to match")
	}
}
