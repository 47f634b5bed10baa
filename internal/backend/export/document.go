package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"

	"github.com/jo-hoe/gojournal/internal/backend/database"
)

// ErrExportPackaging is returned when the document cannot be assembled from the entries.
var ErrExportPackaging = errors.New("export packaging failed")

// ToDocument packs entries into a .docx file with one paragraph per entry:
// the date in bold, a line break, the text, then a blank separator line.
func ToDocument(entries []*database.Entry) ([]byte, error) {
	document := docx.New().WithDefaultTheme()

	for i, entry := range entries {
		if entry == nil {
			return nil, fmt.Errorf("%w: entry at index %d is nil", ErrExportPackaging, i)
		}
		if err := ValidateText(entry.Date); err != nil {
			return nil, fmt.Errorf("%w: date of entry %d: %w", ErrExportPackaging, entry.ID, err)
		}
		if err := ValidateText(entry.Text); err != nil {
			return nil, fmt.Errorf("%w: text of entry %d: %w", ErrExportPackaging, entry.ID, err)
		}
		addEntryParagraph(document, entry)
	}
	document.WithA4Page()

	var buf bytes.Buffer
	if _, err := document.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportPackaging, err)
	}
	return buf.Bytes(), nil
}

func addEntryParagraph(document *docx.Docx, entry *database.Entry) {
	paragraph := document.AddParagraph()

	preserveSpaces(paragraph.AddText(entry.Date).Bold())

	// AddText turns newlines into <w:br/> and tabs into <w:tab/>
	text := paragraph.AddText(strings.ReplaceAll(entry.Text, "\r\n", "\n"))
	text.Children = append([]interface{}{&docx.BarterRabbet{}}, text.Children...)
	preserveSpaces(text)

	paragraph.Children = append(paragraph.Children, &docx.Run{
		RunProperties: &docx.RunProperties{},
		Children:      []interface{}{&docx.BarterRabbet{}, &docx.BarterRabbet{}},
	})
}

func preserveSpaces(run *docx.Run) {
	for _, child := range run.Children {
		if t, ok := child.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}

// ValidateText rejects content that XML 1.0 cannot carry and therefore
// could never be exported to a document.
func ValidateText(s string) error {
	if !utf8.ValidString(s) {
		return errors.New("invalid UTF-8")
	}
	for i, r := range s {
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in a document", r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
