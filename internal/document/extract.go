package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxExtractedSize caps the text taken from a single document (1 MiB).
const MaxExtractedSize = 1 << 20

// ErrUnsupportedFormat is returned by Extract for file types it cannot
// read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("document contains no extractable text")

// SupportedExt reports whether Extract understands the given file
// extension (including the leading dot, case-insensitive).
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Extract reads the file at path and returns its plain-text content.
// PDF files are parsed page by page; pages that fail text extraction
// are skipped rather than failing the whole document. Plain-text
// formats are read as-is.
func Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		return extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := clean(truncate(string(data)))
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}

	var b strings.Builder
	for n := 1; n <= pages; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single bad page should not sink the document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")

		if b.Len() > MaxExtractedSize {
			break
		}
	}

	out := clean(truncate(b.String()))
	if out == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return out, nil
}

func truncate(s string) string {
	if len(s) <= MaxExtractedSize {
		return s
	}
	cut := s[:MaxExtractedSize]
	// Back off a possibly split multi-byte rune at the cut point.
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// clean strips null bytes and collapses runs of non-newline whitespace
// into single spaces. Newlines survive so chunking can break on them.
func clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")

	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteRune('\n')
			lastWasSpace = false
		case unicode.IsSpace(r):
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		default:
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
