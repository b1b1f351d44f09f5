package infra

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// FileStore writes uploaded files under a root directory and returns their public URLs.
type FileStore struct {
	root          string
	urlPrefix     string
	maxImageBytes int64
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root, urlPrefix string, maxImageBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{
		root:          root,
		urlPrefix:     strings.TrimRight(urlPrefix, "/"),
		maxImageBytes: maxImageBytes,
	}, nil
}

// Root returns the directory files are written to.
func (s *FileStore) Root() string { return s.root }

// URLPrefix returns the path prefix files are served under.
func (s *FileStore) URLPrefix() string { return s.urlPrefix }

// MaxImageBytes returns the image upload limit.
func (s *FileStore) MaxImageBytes() int64 { return s.maxImageBytes }

// Save writes data to <root>/<category>/<unix-nanos>-<uuid><ext> and returns its URL.
func (s *FileStore) Save(category, ext string, data []byte) (string, error) {
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", category, err)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s file: %w", category, err)
	}
	return path.Join(s.urlPrefix, category, name), nil
}

// SaveImage reads at most MaxImageBytes from r, checks the content is a
// jpg, png, gif or webp image, and stores it with the detected extension.
func (s *FileStore) SaveImage(category string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxImageBytes+1))
	if err != nil {
		return "", domain.ErrValidation("could not read image upload")
	}
	if int64(len(data)) > s.maxImageBytes {
		return "", domain.ErrValidation(fmt.Sprintf("image exceeds %d bytes", s.maxImageBytes))
	}
	if len(data) == 0 {
		return "", domain.ErrValidation("image is empty")
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), imageTypes...) {
		return "", domain.ErrValidation("image must be jpg, png, gif or webp, got " + mt.String())
	}
	return s.Save(category, mt.Extension(), data)
}
