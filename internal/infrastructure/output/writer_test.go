package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriterOverwrites(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data", "output")
	w := NewFileWriter(dir, "digest_latest.md", "digest_latest.html")

	for _, body := range []string{"first", "second"} {
		mdPath, htmlPath, err := w.Write(context.Background(), "# "+body, "<h1>"+body+"</h1>")
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		if mdPath != filepath.Join(dir, "digest_latest.md") || htmlPath != filepath.Join(dir, "digest_latest.html") {
			t.Fatalf("unexpected paths %s %s", mdPath, htmlPath)
		}
	}

	md, err := os.ReadFile(filepath.Join(dir, "digest_latest.md"))
	if err != nil {
		t.Fatalf("read md: %v", err)
	}
	html, err := os.ReadFile(filepath.Join(dir, "digest_latest.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if string(md) != "# second" || string(html) != "<h1>second</h1>" {
		t.Fatalf("expected overwritten content, got %q %q", md, html)
	}
}
