package protocol

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteDocuments writes each document into dir. Files whose content is
// already identical are left alone, so regenerating unchanged data touches
// nothing. It returns the names of the files it wrote, sorted.
func WriteDocuments(dir string, docs map[string]string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("protocol: creating output directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	var changed []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		content := []byte(docs[name])

		existing, err := os.ReadFile(path)
		if err == nil && bytes.Equal(existing, content) {
			continue
		}
		if err != nil && !os.IsNotExist(err) {
			return changed, fmt.Errorf("protocol: reading %s: %w", path, err)
		}

		if err := os.WriteFile(path, content, 0o644); err != nil {
			return changed, fmt.Errorf("protocol: writing %s: %w", path, err)
		}
		changed = append(changed, name)
	}
	return changed, nil
}
