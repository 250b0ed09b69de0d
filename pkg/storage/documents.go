package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Document field names recognised by the store. Uploaded files are keyed by
// applicant id under a per-field directory, mirroring how the frontend
// addresses them.
const (
	FieldDocumentOne = "documentOne"
	FieldDocumentTwo = "documentTwo"
)

var extensionByMIME = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

// DocumentStore persists applicant document uploads on disk. The database
// only ever sees the extension string returned by Save.
type DocumentStore struct {
	baseDir      string
	maxSize      int64
	allowedMIMEs map[string]struct{}
}

// NewDocumentStore ensures the base directory exists and returns a handle.
func NewDocumentStore(baseDir string, maxSize int64, allowedMIMEs []string) (*DocumentStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}

	allowed := make(map[string]struct{}, len(allowedMIMEs))
	for _, m := range allowedMIMEs {
		allowed[strings.TrimSpace(m)] = struct{}{}
	}
	if len(allowed) == 0 {
		for mime := range extensionByMIME {
			allowed[mime] = struct{}{}
		}
	}

	return &DocumentStore{baseDir: baseDir, maxSize: maxSize, allowedMIMEs: allowed}, nil
}

// Save validates and stores a document for the given applicant and field,
// returning the extension string to persist on the application row. Content
// type is sniffed from the bytes, never trusted from the client.
func (s *DocumentStore) Save(field string, applicantID int64, data []byte) (string, error) {
	if field != FieldDocumentOne && field != FieldDocumentTwo {
		return "", fmt.Errorf("unknown document field %q", field)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("document exceeds %d bytes", s.maxSize)
	}

	mime := sniffMIME(data)
	if _, ok := s.allowedMIMEs[mime]; !ok {
		return "", fmt.Errorf("unsupported document type %s", mime)
	}
	ext, ok := extensionByMIME[mime]
	if !ok {
		return "", fmt.Errorf("unsupported document type %s", mime)
	}

	dir := filepath.Join(s.baseDir, field)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare document directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.%s", applicantID, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return ext, nil
}

// Open returns a read-only handle plus the content type for a stored document.
// Field and extension must come from the closed sets Save can produce; they
// reach the caller via request parameters, so anything else is rejected before
// a path is built.
func (s *DocumentStore) Open(field string, applicantID int64, ext string) (*os.File, string, error) {
	if field != FieldDocumentOne && field != FieldDocumentTwo {
		return nil, "", fmt.Errorf("unknown document field %q", field)
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "jpeg" {
		ext = "jpg"
	}
	contentType := ""
	for mime, e := range extensionByMIME {
		if e == ext {
			contentType = mime
			break
		}
	}
	if contentType == "" {
		return nil, "", fmt.Errorf("unknown document extension %q", ext)
	}

	path := filepath.Join(s.baseDir, field, fmt.Sprintf("%d.%s", applicantID, ext))
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open document: %w", err)
	}
	return file, contentType, nil
}

// sniffMIME normalises http.DetectContentType output to the bare media type.
func sniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}
