package sharedmimeinfo

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// loadedDir records a directory this database has ingested, so [DB.Reload] can detect whether
// the underlying mime/ tree has changed since construction.
type loadedDir struct {
	path    string
	modTime time.Time
}

// loadDirectory reads the five on-disk table files from dir/mime/ and appends their contents to
// db's tables. A directory without a mime/ subdirectory contributes nothing and is not an error.
func (db *DB) loadDirectory(dir string) error {
	mimeDir := filepath.Join(dir, "mime")

	info, err := os.Stat(mimeDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		db.loadedDirs = append(db.loadedDirs, loadedDir{path: mimeDir})
		return nil
	case err != nil:
		return err
	}

	db.loadAliases(filepath.Join(mimeDir, "aliases"))
	db.loadSubclasses(filepath.Join(mimeDir, "subclasses"))
	db.loadIcons(filepath.Join(mimeDir, "icons"), db.icons)
	db.loadIcons(filepath.Join(mimeDir, "generic-icons"), db.genericIcons)
	db.loadGlobs(mimeDir)
	db.loadMagic(filepath.Join(mimeDir, "magic"))

	db.loadedDirs = append(db.loadedDirs, loadedDir{path: mimeDir, modTime: info.ModTime()})

	return nil
}

func (db *DB) openTable(path string) (*os.File, bool) {
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, false
	case err != nil:
		db.logger.Printf("sharedmimeinfo: failed to open %s: %v", path, err)
		return nil, false
	}
	return f, true
}

func (db *DB) loadAliases(path string) {
	f, ok := db.openTable(path)
	if !ok {
		return
	}
	defer f.Close()

	for alias, canonical := range readAliases(f) {
		db.aliases.add(alias, canonical)
	}
}

func (db *DB) loadSubclasses(path string) {
	f, ok := db.openTable(path)
	if !ok {
		return
	}
	defer f.Close()

	for _, pair := range readSubclasses(f) {
		db.parents.add(pair[0], pair[1])
	}
}

func (db *DB) loadIcons(path string, into *iconTable) {
	f, ok := db.openTable(path)
	if !ok {
		return
	}
	defer f.Close()

	for _, pair := range readIcons(f) {
		into.add(pair[0], pair[1])
	}
}

// loadGlobs prefers globs2 over globs, per directory, never consulting both.
func (db *DB) loadGlobs(mimeDir string) {
	if f, ok := db.openTable(filepath.Join(mimeDir, "globs2")); ok {
		defer f.Close()
		for _, e := range readGlobs2(f) {
			db.globs.add(e)
		}
		return
	}

	if f, ok := db.openTable(filepath.Join(mimeDir, "globs")); ok {
		defer f.Close()
		for _, e := range readGlobs(f) {
			db.globs.add(e)
		}
	}
}

func (db *DB) loadMagic(path string) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return
	case err != nil:
		db.logger.Printf("sharedmimeinfo: failed to read %s: %v", path, err)
		return
	}

	entries, err := parseMagicFile(data)
	if err != nil {
		// Missing or malformed header: treat as an empty magic table, not an error.
		return
	}

	db.magic.addEntries(entries)
}
