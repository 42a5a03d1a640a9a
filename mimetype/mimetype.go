// Package mimetype implements the validated `type/subtype` identifier used throughout the
// [Shared MIME-info specification].
//
// [Shared MIME-info specification]: https://specifications.freedesktop.org/shared-mime-info-spec/0.22/
package mimetype

import (
	"fmt"
	"strings"
)

// Wildcard is the subtype that matches any subtype within its type, e.g. "text/*".
const Wildcard = "*"

// Type is a parsed "type/subtype" MIME identifier.
//
// Equality is case-insensitive on both parts; use [Type.Equal] rather than comparing Type
// and Subtype directly.
type Type struct {
	Type    string
	Subtype string
}

// Parse splits s into its type and subtype, rejecting anything that isn't a syntactically valid
// "type/subtype" identifier: both parts must be non-empty and contain no '/'.
func Parse(s string) (Type, error) {
	typ, subtype, found := strings.Cut(s, "/")
	if !found || typ == "" || subtype == "" || strings.Contains(subtype, "/") {
		return Type{}, fmt.Errorf("mimetype: invalid MIME type %q", s)
	}

	return Type{Type: typ, Subtype: subtype}, nil
}

// String returns the canonical "type/subtype" form.
func (t Type) String() string {
	return t.Type + "/" + t.Subtype
}

// Equal reports whether t and other name the same MIME type, ignoring case.
func (t Type) Equal(other Type) bool {
	return strings.EqualFold(t.Type, other.Type) && strings.EqualFold(t.Subtype, other.Subtype)
}

// EqualString reports whether t names the same MIME type as s, ignoring case. It returns false
// if s does not parse.
func (t Type) EqualString(s string) bool {
	other, err := Parse(s)
	if err != nil {
		return false
	}

	return t.Equal(other)
}

// IsWildcardSubtype reports whether t's subtype is the "*" wildcard, e.g. "text/*".
func (t Type) IsWildcardSubtype() bool {
	return t.Subtype == Wildcard
}

// IsInode reports whether t names one of the inode/* pseudo-file types (directory, symlink,
// device, ...). inode/* types are never streamable.
func (t Type) IsInode() bool {
	return strings.EqualFold(t.Type, "inode")
}

// EqualFold reports whether a and b name the same MIME type, ignoring case. Unlike [Type.Equal]
// it operates directly on strings and never fails: unparseable input compares as a literal
// case-insensitive string.
func EqualFold(a, b string) bool {
	ta, errA := Parse(a)
	tb, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}

	return ta.Equal(tb)
}
