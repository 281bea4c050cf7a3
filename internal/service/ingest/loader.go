package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/ceramicsrag/pkg/conv"
)

// Document is one source file reduced to plain text.
type Document struct {
	Source string
	Path   string
	Text   string
}

var supportedExt = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// LoadFile reads a text, markdown or HTML file. HTML is converted to text.
func LoadFile(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExt[ext] {
		return Document{}, fmt.Errorf("unsupported file type %q: %s", ext, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	doc := Document{Source: filepath.Base(path), Path: path}

	switch ext {
	case ".html", ".htm":
		doc.Text, err = conv.HTMLToText(f)
		if err != nil {
			return Document{}, fmt.Errorf("convert %s: %w", path, err)
		}
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return Document{}, err
		}
		doc.Text = string(data)
	}

	return doc, nil
}

// Expand turns file and directory arguments into the supported files they
// name, walking directories in lexical order.
func Expand(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !Supported(p) {
				return nil, fmt.Errorf("unsupported file type: %s", p)
			}
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && Supported(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
