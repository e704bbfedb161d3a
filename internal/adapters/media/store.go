package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

// Store keeps uploaded images as plain files under Root.
type Store struct {
	Root string
}

func New(root string) *Store { return &Store{Root: root} }

// Save writes r to <root>/<prefix>_images/<prefix>_<id>_<8 hex>.jpg and
// returns the path relative to root, always with forward slashes.
func (s *Store) Save(ctx context.Context, prefix, id string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := prefix + "_images"
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	rel := path.Join(dir, fmt.Sprintf("%s_%s_%s.jpg", prefix, id, suffix))

	if err := os.MkdirAll(filepath.Join(s.Root, dir), 0o755); err != nil {
		return "", &domain.IOError{Op: "create image dir", Err: err}
	}
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &domain.IOError{Op: "create image", Err: err}
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", &domain.IOError{Op: "write image", BadInput: isBadInput(err), Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", &domain.IOError{Op: "close image", Err: err}
	}
	return rel, nil
}

// Open returns the stored file at rel. Anything that does not resolve to a
// regular file inside Root is reported as domain.ErrNotFound.
func (s *Store) Open(rel string) (*os.File, fs.FileInfo, error) {
	full, ok := s.resolve(rel)
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, &domain.IOError{Op: "open image", Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, &domain.IOError{Op: "stat image", Err: err}
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, domain.ErrNotFound
	}
	return f, fi, nil
}

func (s *Store) Remove(rel string) error {
	full, ok := s.resolve(rel)
	if !ok {
		return domain.ErrNotFound
	}
	err := os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return &domain.IOError{Op: "remove image", Err: err}
	}
	return nil
}

// ContentType picks the served type from the extension; jpeg is the default.
func ContentType(rel string) string {
	switch strings.ToLower(path.Ext(rel)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func (s *Store) resolve(rel string) (string, bool) {
	if rel == "" || strings.Contains(rel, "\\") || path.IsAbs(rel) {
		return "", false
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), true
}

// isBadInput reports read errors that come from the client's upload, such
// as a body over the size limit.
func isBadInput(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || errors.Is(err, io.ErrUnexpectedEOF)
}
