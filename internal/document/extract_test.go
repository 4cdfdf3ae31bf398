package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func TestExtract_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "Go is expressive.\nGo is concise.\n")

	got, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Go is expressive.\nGo is concise."
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme.md", "# Title\n\nSome   spaced\ttext.")

	got, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "# Title\n\nSome spaced text."
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", "not really an image")

	_, err := Extract(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtract_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "  \n\t \n")

	_, err := Extract(path)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("Extract() error = %v, want ErrNoText", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("Extract() of missing file succeeded, want error")
	}
}

func TestExtract_InvalidPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	if _, err := Extract(path); err == nil {
		t.Fatal("Extract() of malformed PDF succeeded, want error")
	}
}

func TestSupportedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".pdf", true},
		{".PDF", true},
		{".txt", true},
		{".md", true},
		{".docx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := SupportedExt(tt.ext); got != tt.want {
			t.Errorf("SupportedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"null bytes removed", "a\x00b", "ab"},
		{"spaces collapsed", "a   b\t\tc", "a b c"},
		{"newlines preserved", "a\nb\nc", "a\nb\nc"},
		{"surrounding space trimmed", "  hello  ", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clean(tt.in); got != tt.want {
				t.Errorf("clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
