// Package document stores uploaded PDF files and splits them into
// page-level passages.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/54b3r/aimicro-go/internal/apperr"
)

// MsgOnlyPDF is the client-facing rejection for non-PDF uploads.
const MsgOnlyPDF = "Only PDF files are allowed."

// Document is an uploaded file on disk.
type Document struct {
	// Name is the sanitized base filename the document was stored under.
	Name string

	// Path is the absolute or data-dir-relative location of the file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Store keeps uploaded documents in a single directory. Uploading a file with
// a name that already exists overwrites it. Documents are never deleted.
type Store struct {
	// dir is the directory documents are written to.
	dir string
}

// NewStore returns a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("document: could not create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory documents are stored in.
func (s *Store) Dir() string { return s.dir }

// CleanName reduces a client-supplied filename to its base name and checks
// that it names a PDF. The extension check is case-insensitive and ignores
// file content.
func CleanName(filename string) (string, error) {
	// Clients on Windows send backslash-separated paths.
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "", apperr.InvalidInput(MsgOnlyPDF)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", apperr.InvalidInput(MsgOnlyPDF)
	}
	return name, nil
}

// Save writes r to the store under filename, replacing any previous file of
// the same name. The bytes go to a temp file first and are renamed into
// place, so a failed upload never truncates an existing document.
func (s *Store) Save(filename string, r io.Reader) (*Document, error) {
	name, err := CleanName(filename)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("document: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("document: write %s: %w", name, err)
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("document: store %s: %w", name, err)
	}

	return &Document{Name: name, Path: dst, Size: n}, nil
}
