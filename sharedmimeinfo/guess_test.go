package sharedmimeinfo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLooksLikeText(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, true},
		{"plain ascii", []byte("hello world\n"), true},
		{"tab and crlf", []byte("a\tb\r\n"), true},
		{"null byte", []byte("a\x00b"), false},
		{"del byte", []byte("a\x7fb"), false},
		{"high bytes pass through", []byte("café"), true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeText(tt.data); got != tt.want {
				t.Errorf("looksLikeText(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestGuessFileNameCertain(t *testing.T) {
	db := newTestDB(t)

	mt, uncertain, err := db.NewGuess().FileName("lib.rs").Guess()
	if err != nil {
		t.Fatalf("Guess() error = %v", err)
	}
	if mt != "text/rust" || uncertain {
		t.Fatalf("Guess() = (%q, %v), want (text/rust, false)", mt, uncertain)
	}
}

func TestGuessDirectory(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	mt, uncertain, err := db.NewGuess().Path(dir).Guess()
	if err != nil {
		t.Fatalf("Guess() error = %v", err)
	}
	if mt != mimeDirectory || !uncertain {
		t.Fatalf("Guess() = (%q, %v), want (%s, true)", mt, uncertain, mimeDirectory)
	}
}

func TestGuessEmptyFile(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	mt, uncertain, err := db.NewGuess().Path(path).Guess()
	if err != nil {
		t.Fatalf("Guess() error = %v", err)
	}
	if mt != mimeZeroSize || !uncertain {
		t.Fatalf("Guess() = (%q, %v), want (%s, true)", mt, uncertain, mimeZeroSize)
	}
	if mt == mimeTextPlain {
		t.Fatalf("an empty file must never guess as text/plain")
	}
}

func TestGuessFileNameAndDataAgree(t *testing.T) {
	db := newTestDB(t)

	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	mt, uncertain, err := db.NewGuess().FileName("rust-logo.png").Data(pngBytes).Guess()
	if err != nil {
		t.Fatalf("Guess() error = %v", err)
	}
	// No magic rule is registered for image/png in the fixture database, so the single glob
	// match wins outright via the definitive-name-match branch.
	if mt != "image/png" || uncertain {
		t.Fatalf("Guess() = (%q, %v), want (image/png, false)", mt, uncertain)
	}
}

func TestGuessSniffedTextFallback(t *testing.T) {
	db := newTestDB(t)

	mt, uncertain, err := db.NewGuess().Data([]byte("just some plain ascii text\n")).Guess()
	if err != nil {
		t.Fatalf("Guess() error = %v", err)
	}
	if mt != mimeTextPlain || uncertain {
		t.Fatalf("Guess() = (%q, %v), want (%s, false)", mt, uncertain, mimeTextPlain)
	}
}
