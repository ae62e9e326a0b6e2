package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/anamaak-service/pkg/util"
)

// allowedMIMETypes whitelists the image formats accepted for report photos.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Storage saves report photos on a date-partitioned local path.
type Storage struct {
	baseDir  string
	maxBytes int64
}

// NewStorage creates the base directory when missing.
func NewStorage(baseDir string, maxBytes int64) (*Storage, error) {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{baseDir: baseDir, maxBytes: maxBytes}, nil
}

// Save validates and stores a single uploaded photo, returning its path
// relative to the upload root (the value persisted on the report).
func (s *Storage) Save(file *multipart.FileHeader) (string, error) {
	if file.Size > s.maxBytes {
		return "", util.NewValidationError(
			fmt.Sprintf("Fichier trop volumineux. Taille maximum: %dMB", s.maxBytes/(1024*1024)), nil)
	}

	contentType := strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
	if _, ok := allowedMIMETypes[contentType]; !ok {
		return "", util.NewValidationError(
			"Type de fichier non autorisé. Seules les images sont acceptées (JPEG, PNG, GIF, WebP)", nil)
	}

	now := time.Now()
	relDir := filepath.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
	)
	if err := os.MkdirAll(filepath.Join(s.baseDir, relDir), 0o755); err != nil {
		return "", fmt.Errorf("create date dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("signalement_%d_%s%s",
		now.UnixMilli(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		ext,
	)
	relPath := filepath.ToSlash(filepath.Join(relDir, name))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.baseDir, relDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes)); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return relPath, nil
}

// Remove deletes a stored photo; missing files are not an error. Kept for
// operator tooling, reports themselves are never hard-deleted.
func (s *Storage) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// BaseDir exposes the storage root for static serving.
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// FileURL maps a stored path to its public URL, or "" when no photo exists.
func FileURL(relPath *string) *string {
	if relPath == nil || *relPath == "" {
		return nil
	}
	url := "/uploads/" + strings.TrimPrefix(filepath.ToSlash(*relPath), "/")
	return &url
}

// resolve guards against paths escaping the upload root.
func (s *Storage) resolve(relPath string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(relPath))
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("path outside upload root: %s", relPath)
	}
	return abs, nil
}
