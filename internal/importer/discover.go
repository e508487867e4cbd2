package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Document is one client input file. The client ID is the file name
// without its extension.
type Document struct {
	ClientID string
	Path     string
}

func NewDocument(path string) Document {
	base := filepath.Base(path)

	return Document{
		ClientID: strings.TrimSuffix(base, filepath.Ext(base)),
		Path:     path,
	}
}

// Name returns the file name of the document.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

func (d Document) Open() (io.ReadCloser, error) {
	return os.Open(d.Path)
}

// Discover lists the documents in dir matching pattern, sorted by path.
func Discover(dir, pattern string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}

	slices.Sort(matches)

	docs := make([]Document, 0, len(matches))

	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}

		docs = append(docs, NewDocument(m))
	}

	return docs, nil
}
