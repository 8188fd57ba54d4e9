package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"DailyDigest/internal/ports"
)

// JSONStore keeps the seen-set in memory and rewrites a sorted JSON list on every addition.
type JSONStore struct {
	path string
	seen map[string]struct{}
}

var _ ports.SeenStore = (*JSONStore)(nil)

// OpenJSONStore loads path; a missing file is an empty set and a corrupt one is logged and ignored.
func OpenJSONStore(path string, log *slog.Logger) (*JSONStore, error) {
	store := &JSONStore{path: path, seen: map[string]struct{}{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read seen file: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		if log != nil {
			log.Warn("seen file unreadable, starting empty", "path", path, "error", err)
		}
		return store, nil
	}
	for _, u := range urls {
		store.seen[u] = struct{}{}
	}
	return store, nil
}

// AlreadyProcessed returns the subset of urls present in the set.
func (s *JSONStore) AlreadyProcessed(_ context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, u := range urls {
		if _, ok := s.seen[u]; ok {
			result[u] = true
		}
	}
	return result, nil
}

// MarkProcessed adds url and persists the whole set.
func (s *JSONStore) MarkProcessed(_ context.Context, url string) error {
	if _, ok := s.seen[url]; ok {
		return nil
	}
	s.seen[url] = struct{}{}
	return s.save()
}

// Len reports the number of stored URLs.
func (s *JSONStore) Len() int {
	return len(s.seen)
}

func (s *JSONStore) save() error {
	urls := make([]string, 0, len(s.seen))
	for u := range s.seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	payload, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen set: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create seen dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write seen file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace seen file: %w", err)
	}
	return nil
}
