package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"DailyDigest/internal/ports"
)

// FileWriter overwrites the Markdown and HTML digests under a fixed directory.
type FileWriter struct {
	dir          string
	markdownName string
	htmlName     string
}

var _ ports.DigestWriter = (*FileWriter)(nil)

func NewFileWriter(dir, markdownName, htmlName string) *FileWriter {
	return &FileWriter{dir: dir, markdownName: markdownName, htmlName: htmlName}
}

// Write creates the directory when needed and replaces both files.
func (w *FileWriter) Write(_ context.Context, markdown, html string) (string, string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(w.dir, w.markdownName)
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown: %w", err)
	}

	htmlPath := filepath.Join(w.dir, w.htmlName)
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return mdPath, "", fmt.Errorf("write html: %w", err)
	}

	return mdPath, htmlPath, nil
}
