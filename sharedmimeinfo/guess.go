package sharedmimeinfo

import (
	"io"
	"os"
	"path/filepath"
)

// GuessBuilder accumulates the evidence available about a file — its name, a byte prefix, stat
// metadata, or a filesystem path standing in for all three — and resolves it to a single best
// MIME type guess. Build one with [DB.NewGuess], set whichever inputs are available, then call
// Guess.
type GuessBuilder struct {
	db       *DB
	fileName string
	data     []byte
	hasData  bool
	metadata os.FileInfo
	path     string
}

// NewGuess returns a fresh builder bound to db's tables.
func (db *DB) NewGuess() *GuessBuilder {
	return &GuessBuilder{db: db}
}

// FileName sets the candidate's base name, consulted by the glob engine.
func (b *GuessBuilder) FileName(name string) *GuessBuilder {
	b.fileName = name
	return b
}

// Data sets the candidate's byte prefix, consulted by the magic engine.
func (b *GuessBuilder) Data(data []byte) *GuessBuilder {
	b.data = data
	b.hasData = true
	return b
}

// Metadata sets stat information used for the inode shortcut (directory, symlink, zero-size
// regular file).
func (b *GuessBuilder) Metadata(info os.FileInfo) *GuessBuilder {
	b.metadata = info
	return b
}

// Path sets a filesystem path. Any of FileName, Data or Metadata left unset is derived from path
// when Guess runs: the file name from its last component, metadata from an os.Lstat, and data
// from reading at most the magic database's max extent from the start of the file.
func (b *GuessBuilder) Path(path string) *GuessBuilder {
	b.path = path
	return b
}

// Guess resolves the accumulated evidence to a single MIME type. The second return value
// reports whether the guess is tentative; Guess never returns an error for lack of evidence,
// only for I/O failures while deriving missing inputs from Path.
func (b *GuessBuilder) Guess() (mimeType string, uncertain bool, err error) {
	fileName := b.fileName
	metadata := b.metadata
	data := b.data
	hasData := b.hasData

	if b.path != "" {
		if fileName == "" {
			fileName = filepath.Base(b.path)
		}

		if metadata == nil {
			if info, statErr := os.Lstat(b.path); statErr == nil {
				metadata = info
			}
		}
	}

	if metadata != nil {
		switch {
		case metadata.Mode()&os.ModeSymlink != 0:
			return mimeSymlink, true, nil
		case metadata.IsDir():
			return mimeDirectory, true, nil
		case metadata.Mode().IsRegular() && metadata.Size() == 0:
			return mimeZeroSize, true, nil
		}
	}

	if b.path != "" && !hasData {
		read, readErr := readFilePrefix(b.path, b.db.magic.maxExtents())
		if readErr != nil {
			return "", false, readErr
		}
		data = read
		hasData = true
	}

	var names []string
	if fileName != "" {
		names = b.db.globs.matchingMimeTypes(fileName)
	}

	if len(names) == 1 && names[0] != mimeOctetStream {
		return names[0], false, nil
	}

	sniffedMime := mimeOctetStream
	sniffedPriority := uint32(80)
	if hasData {
		if mt, priority, ok := b.db.GetMimeTypeForData(data); ok {
			sniffedMime, sniffedPriority = mt, priority
		}
	}

	if sniffedMime == mimeOctetStream && len(data) > 0 && looksLikeText(data) {
		sniffedMime = mimeTextPlain
	}

	if len(names) == 0 {
		return sniffedMime, sniffedMime == mimeOctetStream, nil
	}

	if sniffedPriority >= 80 {
		return sniffedMime, false, nil
	}

	for _, n := range names {
		if b.db.MimeTypeSubclass(n, sniffedMime) {
			return n, false, nil
		}
	}

	return names[0], true, nil
}

func readFilePrefix(path string, maxExtent int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, maxExtent)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}

	return buf[:n], nil
}

// looksLikeText reports whether the first 128 bytes of data contain no ASCII control byte other
// than tab, newline, vertical tab, form feed, or carriage return. An empty slice is text.
func looksLikeText(data []byte) bool {
	n := len(data)
	if n > 128 {
		n = 128
	}

	for _, b := range data[:n] {
		if b == 0x7f {
			return false
		}
		if b >= 0x20 || b == '\t' || b == '\n' || b == '\v' || b == '\f' || b == '\r' {
			continue
		}
		return false
	}

	return true
}
