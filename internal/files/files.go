// Package files validates and stores report attachments. A rejected upload
// aborts the whole submission before anything is persisted.
package files

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxFileSize is the upload ceiling in bytes (10MB).
const MaxFileSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
}

// Content types we can probe with a stdlib decoder. webp uploads pass the
// extension check but skip the probe.
var probeableTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ValidationResult mirrors the collaborator contract: valid flag, measured
// size and a reason when invalid.
type ValidationResult struct {
	Valid bool
	Size  int64
	Error string
}

type Storage struct {
	uploadDir string
}

func NewStorage(uploadDir string) *Storage {
	return &Storage{uploadDir: uploadDir}
}

// Validate checks extension, size bounds and, for image content types, that
// the bytes actually decode as an image.
func (s *Storage) Validate(fh *multipart.FileHeader) ValidationResult {
	if fh == nil || fh.Filename == "" {
		return ValidationResult{Valid: false, Error: "no file provided"}
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return ValidationResult{Valid: false, Error: "file type not allowed"}
	}

	if fh.Size > MaxFileSize {
		return ValidationResult{Valid: false, Error: fmt.Sprintf("file size exceeds %dMB limit", MaxFileSize/(1024*1024))}
	}
	if fh.Size == 0 {
		return ValidationResult{Valid: false, Error: "file is empty"}
	}

	contentType := fh.Header.Get("Content-Type")
	if probeableTypes[contentType] {
		f, err := fh.Open()
		if err != nil {
			return ValidationResult{Valid: false, Error: "file validation failed"}
		}
		defer f.Close()

		if _, _, err := image.Decode(f); err != nil {
			return ValidationResult{Valid: false, Error: "invalid or corrupted image file"}
		}
	}

	return ValidationResult{Valid: true, Size: fh.Size}
}

// Save writes the upload under <uploadDir>/<reportID>/ with a sanitized,
// timestamped filename and returns the path relative to the upload dir.
func (s *Storage) Save(fh *multipart.FileHeader, reportID string) (string, error) {
	reportDir := filepath.Join(s.uploadDir, reportID)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := sanitizeFilename(filepath.Base(fh.Filename))
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	timestamp := time.Now().UTC().Format("20060102_150405")
	unique := fmt.Sprintf("%s_%s%s", stem, timestamp, ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(reportDir, unique))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filepath.Join(reportID, unique), nil
}

// Delete removes a stored attachment and its report directory when empty.
func (s *Storage) Delete(relPath string) error {
	full := filepath.Join(s.uploadDir, relPath)
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	// Best effort; fails when the directory still has files.
	_ = os.Remove(filepath.Dir(full))
	return nil
}

func sanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || strings.Trim(name, "._") == "" {
		name = "upload"
	}
	return name
}
