// Package upload rebuilds an uploaded folder on disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for names that are absolute or leave the
// staging directory.
var ErrUnsafePath = errors.New("unsafe upload path")

// File is one uploaded file. Name is the browser-supplied relative path,
// slash separated (e.g. "project/src/app.py").
type File struct {
	Name    string
	Content io.Reader
}

// Stage writes files under a fresh temporary directory, preserving their
// relative structure, and returns that directory. The directory is left in
// place for the caller.
func Stage(files []File) (string, error) {
	names := make([]string, len(files))
	for i, f := range files {
		rel, err := cleanName(f.Name)
		if err != nil {
			return "", err
		}
		names[i] = rel
	}

	dir, err := os.MkdirTemp("", "aidoc-upload-*")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	for i, f := range files {
		rel := names[i]
		dest := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", fmt.Errorf("create dir for %s: %w", rel, err)
		}
		if err := writeFile(dest, f.Content); err != nil {
			return "", fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return dir, nil
}

func cleanName(name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	if slashed == "" || path.IsAbs(slashed) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	rel := path.Clean(slashed)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return rel, nil
}

func writeFile(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
