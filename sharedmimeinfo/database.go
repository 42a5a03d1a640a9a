package sharedmimeinfo

import (
	"log"
	"os"
	"strings"

	"github.com/freedesktop-go/sharedmime/basedir"
	"github.com/freedesktop-go/sharedmime/mimetype"
)

const (
	mimeTextPlain   = "text/plain"
	mimeOctetStream = "application/octet-stream"
	mimeZeroSize    = "application/x-zerosize"
	mimeDirectory   = "inode/directory"
	mimeSymlink     = "inode/symlink"
)

// DB is an immutable-after-construction Shared MIME-info database. It is single-writer,
// multi-reader: query methods may run concurrently with each other, but [DB.Reload] must not
// overlap with any other call on the same instance.
type DB struct {
	aliases      *aliasTable
	parents      *parentTable
	icons        *iconTable
	genericIcons *iconTable
	globs        *globTable
	magic        *magicDB

	loadedDirs []loadedDir
	logger     *log.Logger
}

func newDB(logger *log.Logger) *DB {
	if logger == nil {
		logger = log.Default()
	}

	return &DB{
		aliases:      newAliasTable(),
		parents:      newParentTable(),
		icons:        newIconTable(),
		genericIcons: newIconTable(),
		globs:        newGlobTable(),
		magic:        newMagicDB(),
		logger:       logger,
	}
}

// New builds a database from $XDG_DATA_HOME followed by each entry of $XDG_DATA_DIRS, in that
// order, matching the precedence rule of the Shared MIME-info and XDG Base Directory specs.
func New() (*DB, error) {
	db := newDB(nil)

	dirs := append([]string{basedir.DataHome}, basedir.DataDirs...)
	for _, dir := range dirs {
		if err := db.loadDirectory(dir); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// NewForDirectory builds a database from a single directory, bypassing the XDG search path.
// It is intended for tests and for embedding a private, self-contained mime/ tree.
func NewForDirectory(dir string) (*DB, error) {
	db := newDB(nil)

	if err := db.loadDirectory(dir); err != nil {
		return nil, err
	}

	return db, nil
}

// Reload compares every directory this database loaded against the filesystem and, if any has
// advanced its modification time, rebuilds every table from scratch in the original load order.
// It reports whether a reload happened.
func (db *DB) Reload() (bool, error) {
	stale := false
	for _, d := range db.loadedDirs {
		info, err := os.Stat(d.path)
		if err != nil {
			if d.modTime.IsZero() {
				continue // was missing before, still missing (or still an error): not stale
			}
			stale = true
			break
		}
		if info.ModTime().After(d.modTime) {
			stale = true
			break
		}
	}

	if !stale {
		return false, nil
	}

	dirs := make([]string, len(db.loadedDirs))
	for i, d := range db.loadedDirs {
		dirs[i] = strings.TrimSuffix(d.path, "/mime")
	}

	fresh := newDB(db.logger)
	for _, dir := range dirs {
		if err := fresh.loadDirectory(dir); err != nil {
			return false, err
		}
	}

	*db = *fresh

	return true, nil
}

// UnaliasMimeType returns the canonical MIME type for m, one hop only, and whether m was a known
// alias.
func (db *DB) UnaliasMimeType(m string) (string, bool) {
	return db.aliases.unalias(m)
}

func (db *DB) unaliasOrSelf(m string) string {
	if canonical, ok := db.aliases.unalias(m); ok {
		return canonical
	}
	return m
}

// GetParents returns the unaliased form of m followed by its direct parents, or (nil, false) if
// m itself is not a registered alias. This mirrors the reference implementation's own
// get_parents, which only succeeds through unalias_mime_type and so returns none for the common
// case of a plain, non-aliased MIME type with real parents; kept for source fidelity rather than
// "fixed", since nothing in this package's own Subclass traversal depends on GetParents.
func (db *DB) GetParents(m string) ([]string, bool) {
	canonical, ok := db.aliases.unalias(m)
	if !ok {
		return nil, false
	}

	direct := db.parents.directParents(canonical)
	result := make([]string, 0, len(direct)+1)
	result = append(result, canonical)
	result = append(result, direct...)

	return result, true
}

// LookupIconNames returns, in order of specificity, the icon names registered for m: the
// explicit specific icon if any, the MIME name with '/' replaced by '-', and either the
// explicit generic icon or a synthesized "{type}-x-generic" fallback.
func (db *DB) LookupIconNames(m string) []string {
	var result []string

	if name, ok := db.icons.lookup(m); ok {
		result = append(result, name)
	}

	result = append(result, strings.ReplaceAll(m, "/", "-"))
	result = append(result, db.LookupGenericIconName(m))

	return result
}

// LookupGenericIconName returns the generic icon name registered for m, or a synthesized
// "{type}-x-generic" fallback derived from m's type.
func (db *DB) LookupGenericIconName(m string) string {
	if name, ok := db.genericIcons.lookup(m); ok {
		return name
	}

	typ, _, found := strings.Cut(m, "/")
	if !found {
		typ = m
	}

	return typ + "-x-generic"
}

// GetMimeTypesFromFileName returns the MIME types whose glob patterns match name, sorted
// ascending by weight. It never returns an empty slice: a name matching nothing yields
// [application/octet-stream].
func (db *DB) GetMimeTypesFromFileName(name string) []string {
	matches := db.globs.matchingMimeTypes(name)
	if len(matches) == 0 {
		return []string{mimeOctetStream}
	}

	return matches
}

// GetMimeTypeForData sniffs data against the magic database. An empty buffer is reported as
// application/x-zerosize at maximum priority, matching the inode shortcut used when no bytes
// are available to read.
func (db *DB) GetMimeTypeForData(data []byte) (string, uint32, bool) {
	if len(data) == 0 {
		return mimeZeroSize, 100, true
	}

	return db.magic.lookup(data)
}

// MimeTypeEqual reports whether a and b name the same MIME type once both are unaliased,
// comparing case-insensitively as [mimetype.Type] equality requires.
func (db *DB) MimeTypeEqual(a, b string) bool {
	return mimetype.EqualFold(db.unaliasOrSelf(a), db.unaliasOrSelf(b))
}

// MimeTypeSubclass reports whether m is, directly or transitively, an instance of base. Both
// arguments are unaliased first. It is true when, checked in this order: m equals base; base is
// "T/*" and m's type is T; base is text/plain and m's type is text; base is
// application/octet-stream and m's type is not inode; or some direct parent of m is a subclass
// of base (each type is visited at most once).
func (db *DB) MimeTypeSubclass(m, base string) bool {
	m = db.unaliasOrSelf(m)
	base = db.unaliasOrSelf(base)

	return db.subclass(m, base, make(map[string]bool))
}

func (db *DB) subclass(m, base string, visited map[string]bool) bool {
	if visited[m] {
		return false
	}
	visited[m] = true

	if mimetype.EqualFold(m, base) {
		return true
	}

	baseType, baseSubtype, baseOk := strings.Cut(base, "/")
	mType, _, mOk := strings.Cut(m, "/")

	if baseOk && mOk && baseSubtype == "*" && strings.EqualFold(baseType, mType) {
		return true
	}

	if strings.EqualFold(base, mimeTextPlain) && mOk && strings.EqualFold(mType, "text") {
		return true
	}

	if strings.EqualFold(base, mimeOctetStream) && !(mOk && strings.EqualFold(mType, "inode")) {
		return true
	}

	for _, parent := range db.parents.directParents(m) {
		if db.subclass(parent, base, visited) {
			return true
		}
	}

	return false
}

// BroaderOnce returns the direct parents of mime as recorded in the loaded subclasses tables,
// without the text/plain or application/octet-stream fallback that [DB.MimeTypeSubclass] applies
// implicitly.
func (db *DB) BroaderOnce(mime string) []string {
	return db.parents.directParents(mime)
}

// BroaderDfs returns every ancestor of mime reachable through the subclass graph, visited
// depth-first pre-order, each appearing once.
func (db *DB) BroaderDfs(mime string) []string {
	visited := make(map[string]bool)
	var result []string

	var walk func(string)
	walk = func(m string) {
		for _, parent := range db.parents.directParents(m) {
			if visited[parent] {
				continue
			}
			visited[parent] = true
			result = append(result, parent)
			walk(parent)
		}
	}
	walk(mime)

	return result
}
