package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PhotoStore writes uploaded images below a root directory.
type PhotoStore struct {
	root string
	now  Clock
}

func NewPhotoStore(root string, now Clock) *PhotoStore {
	if root == "" {
		root = "uploads"
	}
	return &PhotoStore{root: root, now: clockOrDefault(now)}
}

// SaveBase64Image decodes a base64 (optionally data-URL prefixed) image into
// root/subdir and returns its slash-separated path relative to root.
func (p *PhotoStore) SaveBase64Image(b64 string, subdir string) (string, error) {
	ext := "jpg"
	if strings.HasPrefix(b64, "data:image/png") {
		ext = "png"
	}
	if idx := strings.Index(b64, "base64,"); idx >= 0 {
		b64 = b64[idx+7:]
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}

	dir := filepath.Join(p.root, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := fmt.Sprintf("%d.%s", p.now().UnixNano(), ext)
	fullpath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, filename)), nil
}

// Remove deletes a stored file. Missing files are ignored.
func (p *PhotoStore) Remove(relPath string) error {
	full := filepath.Join(p.root, filepath.FromSlash(relPath))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *PhotoStore) Root() string { return p.root }
