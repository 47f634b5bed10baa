package export

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/jo-hoe/gojournal/internal/backend/database"
)

const (
	DefaultJSONFileName     = "journalEntries.json"
	DefaultDocumentFileName = "journalEntries.docx"

	MimeJSON     = "application/json"
	MimeDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Artifact is a downloadable export.
type Artifact struct {
	FileName    string
	ContentType string
	Content     []byte
}

func NewJSONArtifact(entries []*database.Entry, fileName string) (*Artifact, error) {
	content, err := ToJSON(entries)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		FileName:    orDefault(fileName, DefaultJSONFileName),
		ContentType: MimeJSON,
		Content:     content,
	}, nil
}

func NewDocumentArtifact(entries []*database.Entry, fileName string) (*Artifact, error) {
	content, err := ToDocument(entries)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		FileName:    orDefault(fileName, DefaultDocumentFileName),
		ContentType: MimeDocument,
		Content:     content,
	}, nil
}

// ContentDisposition returns the header value that makes browsers save the
// artifact under its file name.
func (a *Artifact) ContentDisposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName})
}

// WriteFile saves the artifact into dir under its file name and returns the written path.
func WriteFile(dir string, a *Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(a.FileName))
	if err := os.WriteFile(path, a.Content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}
	slog.Debug("export written", "path", path, "size_bytes", len(a.Content))
	return path, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
