package sharedmimeinfo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
)

// magicHeader is the literal byte sequence every binary magic file begins with.
var magicHeader = []byte("MIME-Magic\x00\n")

// magicRule is a single node of a magic entry's rule tree, in its pre-order flattened form:
// indent is the node's depth, root nodes have indent 0.
type magicRule struct {
	indent      uint32
	startOffset uint32
	value       []byte
	mask        []byte // nil when the rule has no mask
	wordSize    uint32 // parsed but never applied to byte order, mirroring the format's own disuse
	rangeLength uint32
}

// matchesData reports whether data contains this rule's (masked) value at any offset in
// [startOffset, startOffset+rangeLength).
func (r magicRule) matchesData(data []byte) bool {
	valueLen := len(r.value)
	start := int(r.startOffset)
	end := start + int(r.rangeLength)

	for i := start; i < end; i++ {
		if i+valueLen > len(data) {
			return false
		}

		ok := true
		if r.mask != nil {
			for j := 0; j < valueLen; j++ {
				if r.value[j]&r.mask[j] != data[i+j]&r.mask[j] {
					ok = false
					break
				}
			}
		} else {
			if !bytes.Equal(data[i:i+valueLen], r.value) {
				ok = false
			}
		}

		if ok {
			return true
		}
	}

	return false
}

// extent is value length + start offset + range length: an upper bound on the number of leading
// bytes of a buffer this rule can inspect.
func (r magicRule) extent() int {
	return len(r.value) + int(r.startOffset) + int(r.rangeLength)
}

// magicEntry is one MIME type's magic rule tree plus the priority it contributes on a match.
type magicEntry struct {
	mimeType string
	priority uint32
	rules    []magicRule
}

// matches walks the flattened rule tree against data. A rule only participates once its parent
// (the preceding rule at indent-1) has matched; the entry matches as a whole once a leaf rule in
// some branch matches: a matched rule is a leaf when it is the last rule or the next rule is not
// deeper than it. This is the same depth-tracking walk as the reference parser's
// `MagicEntry::matches`: current_level starts at 0 and only advances past a rule that matched at
// exactly that level, dropping back to 0 the moment a rule at the current level fails.
func (e magicEntry) matches(data []byte) (mimeType string, priority uint32, ok bool) {
	currentLevel := uint32(0)

	for i, rule := range e.rules {
		if rule.indent != currentLevel {
			continue
		}

		if !rule.matchesData(data) {
			currentLevel = 0
			continue
		}

		if i+1 >= len(e.rules) || e.rules[i+1].indent <= currentLevel {
			return e.mimeType, e.priority, true
		}

		currentLevel++
	}

	return "", 0, false
}

// maxExtents is the largest extent of any rule in the entry.
func (e magicEntry) maxExtents() int {
	res := 0
	for _, r := range e.rules {
		if x := r.extent(); x > res {
			res = x
		}
	}
	return res
}

// magicDB is the full set of magic entries loaded from every directory, ordered by descending
// priority so that [magicDB.lookup] can return the first match.
type magicDB struct {
	entries []magicEntry
}

func newMagicDB() *magicDB {
	return &magicDB{}
}

func (db *magicDB) addEntries(entries []magicEntry) {
	db.entries = append(db.entries, entries...)
	sort.SliceStable(db.entries, func(i, j int) bool {
		return db.entries[i].priority > db.entries[j].priority
	})
}

// lookup scans entries in priority-descending order and returns the first that matches data.
func (db *magicDB) lookup(data []byte) (mimeType string, priority uint32, ok bool) {
	for _, e := range db.entries {
		if mt, p, matched := e.matches(data); matched {
			return mt, p, true
		}
	}
	return "", 0, false
}

// maxExtents is the number of leading bytes of a file callers should read before calling lookup,
// so that every rule in the database has a chance to match.
func (db *magicDB) maxExtents() int {
	res := 0
	for _, e := range db.entries {
		if x := e.maxExtents(); x > res {
			res = x
		}
	}
	return res
}

// magicParser walks a binary magic file byte-by-byte. It has no relation to the text scanners
// used elsewhere in this package: the format mixes ASCII header fields with raw binary value
// bytes, so line-oriented scanning cannot be used.
type magicParser struct {
	data []byte
	pos  int
}

func (p *magicParser) eof() bool { return p.pos >= len(p.data) }

func (p *magicParser) peekByte() (byte, bool) {
	if p.eof() {
		return 0, false
	}
	return p.data[p.pos], true
}

// consumeLiteral advances past lit if the parser is positioned at it, reporting whether it did.
func (p *magicParser) consumeLiteral(lit byte) bool {
	b, ok := p.peekByte()
	if !ok || b != lit {
		return false
	}
	p.pos++
	return true
}

// takeUntil returns the bytes up to (not including) the next occurrence of delim, advancing past
// them but not past delim itself. It fails if delim never occurs.
func (p *magicParser) takeUntil(delim byte) ([]byte, bool) {
	idx := bytes.IndexByte(p.data[p.pos:], delim)
	if idx < 0 {
		return nil, false
	}
	res := p.data[p.pos : p.pos+idx]
	p.pos += idx
	return res, true
}

func (p *magicParser) takeUntilString(delim string) ([]byte, bool) {
	idx := bytes.Index(p.data[p.pos:], []byte(delim))
	if idx < 0 {
		return nil, false
	}
	res := p.data[p.pos : p.pos+idx]
	p.pos += idx
	return res, true
}

func (p *magicParser) take(n int) ([]byte, bool) {
	if p.pos+n > len(p.data) {
		return nil, false
	}
	res := p.data[p.pos : p.pos+n]
	p.pos += n
	return res, true
}

func isHexDigitByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

// decimalOrDefault parses buf as an unsigned decimal integer, returning def on any failure,
// including an empty buffer. This reproduces the reference parser's buf_to_u32, which is applied
// even to fields lexed with a hex-digit character class.
func decimalOrDefault(buf []byte, def uint32) uint32 {
	n, err := strconv.ParseUint(string(buf), 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}

// parseMagicRule parses one `magic_rule` production:
//
//	[ indent ] '>' start-offset '=' value_length value
//	[ '&' mask ] [ word_size ] [ range_length ] line-ending
//
// It first peeks for a leading digit or '>', exactly like the reference parser's
// `peek!(is_a!("0123456789>"))` guard, so that it never mistakes the next entry's
// `[priority:mime]` header for a malformed rule and swallows it.
func (p *magicParser) parseMagicRule() (magicRule, bool) {
	start := p.pos

	if b, ok := p.peekByte(); !ok || !(isDigitByte(b) || b == '>') {
		return magicRule{}, false
	}

	indentBuf, ok := p.takeUntil('>')
	if !ok {
		p.pos = start
		return magicRule{}, false
	}
	indent := decimalOrDefault(indentBuf, 0)

	if !p.consumeLiteral('>') {
		p.pos = start
		return magicRule{}, false
	}

	offsetBuf, ok := p.takeUntil('=')
	if !ok {
		p.pos = start
		return magicRule{}, false
	}
	offset := decimalOrDefault(offsetBuf, 0)

	if !p.consumeLiteral('=') {
		p.pos = start
		return magicRule{}, false
	}

	lenBuf, ok := p.take(2)
	if !ok {
		p.pos = start
		return magicRule{}, false
	}
	valueLength := int(binary.BigEndian.Uint16(lenBuf))

	value, ok := p.take(valueLength)
	if !ok {
		p.pos = start
		return magicRule{}, false
	}

	var mask []byte
	if b, ok := p.peekByte(); ok && b == '&' {
		p.pos++
		m, ok := p.take(valueLength)
		if !ok {
			p.pos = start
			return magicRule{}, false
		}
		mask = m
	}

	wordSize := uint32(1)
	if b, ok := p.peekByte(); ok && b == '~' {
		if p.pos+1 < len(p.data) {
			switch p.data[p.pos+1] {
			case '0', '1', '2', '4':
				wordSize = uint32(p.data[p.pos+1] - '0')
				p.pos += 2
			}
		}
	}

	rangeLength := uint32(1)
	if b, ok := p.peekByte(); ok && b == '+' {
		p.pos++
		digitsStart := p.pos
		for p.pos < len(p.data) && isHexDigitByte(p.data[p.pos]) {
			p.pos++
		}
		rangeLength = decimalOrDefault(p.data[digitsStart:p.pos], 1)
	}

	if !p.consumeLineEnding() {
		p.pos = start
		return magicRule{}, false
	}

	return magicRule{
		indent:      indent,
		startOffset: offset,
		value:       append([]byte(nil), value...),
		mask:        append([]byte(nil), mask...),
		wordSize:    wordSize,
		rangeLength: rangeLength,
	}, true
}

func (p *magicParser) consumeLineEnding() bool {
	if p.consumeLiteral('\r') {
		p.consumeLiteral('\n')
		return true
	}
	return p.consumeLiteral('\n')
}

// parseMagicHeader parses `'[' priority ':' mime_type ']' '\n'`.
func (p *magicParser) parseMagicHeader() (priority uint32, mimeType string, ok bool) {
	start := p.pos

	if !p.consumeLiteral('[') {
		return 0, "", false
	}

	priorityBuf, ok := p.takeUntil(':')
	if !ok {
		p.pos = start
		return 0, "", false
	}
	priority = decimalOrDefault(priorityBuf, 0)

	if !p.consumeLiteral(':') {
		p.pos = start
		return 0, "", false
	}

	mimeBuf, ok := p.takeUntilString("]\n")
	if !ok {
		p.pos = start
		return 0, "", false
	}

	if _, ok := p.take(2); !ok {
		p.pos = start
		return 0, "", false
	}

	return priority, string(mimeBuf), true
}

func (p *magicParser) parseMagicEntry() (magicEntry, bool) {
	start := p.pos

	priority, mimeType, ok := p.parseMagicHeader()
	if !ok {
		p.pos = start
		return magicEntry{}, false
	}

	var rules []magicRule
	for {
		rule, ok := p.parseMagicRule()
		if !ok {
			break
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		p.pos = start
		return magicEntry{}, false
	}

	return magicEntry{mimeType: mimeType, priority: priority, rules: rules}, true
}

// parseMagicFile parses an entire binary magic file: the fixed header followed by zero or more
// entries. A malformed trailing entry stops parsing but does not discard entries already parsed.
func parseMagicFile(data []byte) ([]magicEntry, error) {
	if !bytes.HasPrefix(data, magicHeader) {
		return nil, fmt.Errorf("sharedmimeinfo: magic file missing %q header", string(magicHeader))
	}

	p := &magicParser{data: data, pos: len(magicHeader)}

	var entries []magicEntry
	for {
		entry, ok := p.parseMagicEntry()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
