// Package photostore keeps uploaded shirt photos in a local directory.
package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored photos are served.
const URLPrefix = "/uploads/"

var (
	// ErrNotFound is returned by Open when no photo has the given name.
	ErrNotFound = errors.New("photo not found")
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = errors.New("invalid photo name")
)

// PhotoStore is the file storage used by the catalog service.
type PhotoStore interface {
	// Save writes r under a freshly generated name keeping the extension of
	// originalName, and returns that name.
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	// Delete removes the named file. Missing files are ignored.
	Delete(ctx context.Context, name string) error
}

// Local stores photos as flat files in a directory.
type Local struct {
	dir string
	now func() time.Time
}

// NewLocal creates a store rooted at dir, creating the directory if needed.
func NewLocal(dir string) (*Local, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("photo directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory %s: %w", abs, err)
	}
	return &Local{dir: abs, now: time.Now}, nil
}

// Dir returns the absolute storage directory.
func (s *Local) Dir() string {
	return s.dir
}

// Save streams r into a new file. The file is created exclusively, so an existing
// photo is never overwritten; a partially written file is removed.
func (s *Local) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("photo content is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := s.generateName(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create photo %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write photo %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close photo %s: %w", name, err)
	}
	return name, nil
}

// Open returns the named photo for reading. The caller closes it.
func (s *Local) Open(ctx context.Context, name string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open photo %s: %w", name, err)
	}
	return f, nil
}

// Delete removes the named photo.
func (s *Local) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove photo %s: %w", name, err)
	}
	return nil
}

// generateName returns <unix-millis>-<random><ext>.
func (s *Local) generateName(originalName string) string {
	return fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), uuid.New().ID(), cleanExt(originalName))
}

// pathFor maps a photo name to a path, rejecting anything that is not a plain
// file name inside the store directory.
func (s *Local) pathFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// cleanExt returns the extension of name, or "" if it holds anything but
// letters and digits.
func cleanExt(name string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, ch := range ext[1:] {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !isAlnum {
			return ""
		}
	}
	return ext
}

// RefFor builds the public URL of a stored photo.
func RefFor(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + URLPrefix + name
}

// NameFromRef returns the stored photo name a reference points at. References
// whose path does not start with URLPrefix belong to someone else and yield false.
func NameFromRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	path := ref
	if u, err := url.Parse(ref); err == nil {
		path = u.Path
	}
	if !strings.HasPrefix(path, URLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(path, URLPrefix)
	if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
		return "", false
	}
	return name, true
}
