// Package corpus collects the source files of a project tree that feed the
// documentation prompts.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Category string

const (
	Frontend Category = "frontend"
	Backend  Category = "backend"
)

// Patterns are matched case-sensitively against the base name. "*.NET" is a
// plain name match, not a real file type.
var patterns = map[Category][]string{
	Frontend: {"*.html", "*.css", "*.js", "*.jsx"},
	Backend:  {"*.py", "*.java", "*.php", "*.NET"},
}

// ErrNotText is returned for files that are not valid UTF-8.
var ErrNotText = errors.New("file is not UTF-8 text")

// FileRecord is one collected file.
type FileRecord struct {
	Name    string // base name, as shown to the model
	Path    string
	Content string
}

// Patterns returns the name patterns of a category.
func Patterns(c Category) []string {
	return append([]string(nil), patterns[c]...)
}

// Matches reports whether a base name belongs to the category.
func Matches(c Category, name string) bool {
	for _, p := range patterns[c] {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Collect walks root and reads every file of the category, in traversal
// order. Unreadable directories are skipped; a file that cannot be read as
// text aborts the whole collection.
func Collect(root string, c Category) ([]FileRecord, error) {
	if _, ok := patterns[c]; !ok {
		return nil, fmt.Errorf("unknown category %q", c)
	}

	var records []FileRecord
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !Matches(c, d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("read %s: %w", path, ErrNotText)
		}

		records = append(records, FileRecord{
			Name:    d.Name(),
			Path:    path,
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s files: %w", c, err)
	}
	return records, nil
}

// Format renders records as the text block embedded in a stage prompt.
func Format(records []FileRecord) string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString("---\nFile: ")
		sb.WriteString(r.Name)
		sb.WriteString("\nContent:\n")
		sb.WriteString(r.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
