package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// maxTitleLength bounds the sanitized title portion of a filename so that
// long model-generated headings cannot produce unwieldy paths.
const maxTitleLength = 80

// placeholderTitle is used when sanitizing strips a title down to nothing.
const placeholderTitle = "Untitled Note"

// Writer persists generated notes as Markdown files inside a fixed
// archive root. It is pure apart from filesystem writes and holds no
// shared state.
type Writer struct {
	root string

	// now is overridable in tests to make filenames deterministic.
	now func() time.Time
}

// NewWriter creates a Writer rooted at dir. The directory is created if
// it does not already exist.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("archive directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	return &Writer{root: dir, now: time.Now}, nil
}

// Write stores body as a UTF-8 Markdown file named after title and
// returns the full path of the written file. The filename keeps only
// characters safe on common filesystems and appends a uniqueness suffix
// derived from the current time so identically-titled notes do not
// collide.
func (w *Writer) Write(title, body string) (string, error) {
	filename := fmt.Sprintf("%s_%d.md", SanitizeTitle(title), w.now().Unix())
	path := filepath.Join(w.root, filename)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write note %s: %w", path, err)
	}

	return path, nil
}

// SanitizeTitle reduces a note title to a filesystem-safe filename stem:
// only alphanumerics, spaces, hyphens, and underscores are retained,
// trailing whitespace is trimmed, and the result is truncated to a
// bounded length. An empty result yields a fixed placeholder.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	safe := strings.TrimRight(b.String(), " \t")
	if len(safe) > maxTitleLength {
		// Truncate on a rune boundary so multi-byte titles stay valid UTF-8.
		runes := []rune(safe)
		for len(string(runes)) > maxTitleLength {
			runes = runes[:len(runes)-1]
		}
		safe = strings.TrimRight(string(runes), " \t")
	}
	if safe == "" {
		return placeholderTitle
	}
	return safe
}
