package parser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"DailyDigest/internal/ports"
)

// FileSource reads article URLs from a text file, one per line.
type FileSource struct {
	path string
}

var _ ports.LinkSource = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Links skips blank lines and lines starting with '#'.
func (f *FileSource) Links(_ context.Context) ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}
