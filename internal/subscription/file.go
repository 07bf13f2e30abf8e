package subscription

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePersister stores the document as an indented JSON file.
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load reads the file. A missing file yields an empty document.
func (p *FilePersister) Load() (*Document, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Document{Group: make(map[string]*Group)}, nil
		}
		return nil, fmt.Errorf("read subscription file: %w", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse subscription file: %w", err)
	}
	return doc, nil
}

// Save rewrites the whole file.
func (p *FilePersister) Save(doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}
	if dir := filepath.Dir(p.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create subscription dir: %w", err)
		}
	}
	if err := os.WriteFile(p.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write subscription file: %w", err)
	}
	return nil
}
