package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newestFirst() []*database.Entry {
	return []*database.Entry{
		{ID: 3, Date: "10/18/2026, 9:00:00 PM", Text: "c"},
		{ID: 2, Date: "10/18/2026, 8:00:00 PM", Text: "b <b>bold?</b> & more"},
		{ID: 1, Date: "10/18/2026, 7:00:00 PM", Text: "a\nsecond line\twith tab"},
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	entries := newestFirst()

	data, err := ToJSON(entries)
	require.NoError(t, err)

	var decoded []database.Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Date, decoded[i].Date)
		assert.Equal(t, entries[i].Text, decoded[i].Text)
	}
}

func TestToJSON_Format(t *testing.T) {
	data, err := ToJSON([]*database.Entry{{ID: 7, Date: "d", Text: "<x>"}})
	require.NoError(t, err)

	expected := "[\n  {\n    \"id\": 7,\n    \"date\": \"d\",\n    \"text\": \"<x>\"\n  }\n]"
	assert.Equal(t, expected, string(data))
}

func TestToJSON_Empty(t *testing.T) {
	for _, entries := range [][]*database.Entry{nil, {}} {
		data, err := ToJSON(entries)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	}
}

type wordDocument struct {
	Paragraphs []wordParagraph `xml:"body>p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Bold   *struct{}  `xml:"rPr>b"`
	Breaks []struct{} `xml:"br"`
	Texts  []string   `xml:"t"`
}

func readDocument(t *testing.T, content []byte) (wordDocument, map[string]bool) {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	names := map[string]bool{}
	var documentXML []byte
	for _, f := range reader.File {
		names[f.Name] = true
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			documentXML, err = io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
		}
	}
	require.NotEmpty(t, documentXML, "word/document.xml missing")

	var doc wordDocument
	require.NoError(t, xml.Unmarshal(documentXML, &doc))
	return doc, names
}

func TestToDocument_Structure(t *testing.T) {
	entries := newestFirst()

	content, err := ToDocument(entries)
	require.NoError(t, err)

	doc, names := readDocument(t, content)
	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "docProps/core.xml", "word/document.xml", "word/_rels/document.xml.rels", "word/styles.xml"} {
		assert.True(t, names[part], "missing part %s", part)
	}

	require.Len(t, doc.Paragraphs, len(entries))
	for i, p := range doc.Paragraphs {
		require.Len(t, p.Runs, 3, "paragraph %d", i)

		dateRun := p.Runs[0]
		assert.NotNil(t, dateRun.Bold, "date run must be bold")
		assert.Equal(t, []string{entries[i].Date}, dateRun.Texts)

		textRun := p.Runs[1]
		assert.Nil(t, textRun.Bold)
		assert.NotEmpty(t, textRun.Breaks, "text must start on a new line")

		separator := p.Runs[2]
		assert.Len(t, separator.Breaks, 2)
		assert.Empty(t, separator.Texts)
	}

	assert.Equal(t, []string{"c"}, doc.Paragraphs[0].Runs[1].Texts)
	assert.Equal(t, []string{"b <b>bold?</b> & more"}, doc.Paragraphs[1].Runs[1].Texts)
	// "a\nsecond line\twith tab": leading break, one break per newline, tab splits the run text
	assert.Len(t, doc.Paragraphs[2].Runs[1].Breaks, 2)
	assert.Equal(t, []string{"a", "second line", "with tab"}, doc.Paragraphs[2].Runs[1].Texts)
}

func TestToDocument_Empty(t *testing.T) {
	content, err := ToDocument(nil)
	require.NoError(t, err)

	doc, _ := readDocument(t, content)
	assert.Empty(t, doc.Paragraphs)
}

func TestToDocument_PackagingErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []*database.Entry
	}{
		{name: "control character", entries: []*database.Entry{{ID: 1, Date: "d", Text: "bell\x07"}}},
		{name: "invalid utf-8", entries: []*database.Entry{{ID: 1, Date: "d", Text: string([]byte{0xff, 0xfe})}}},
		{name: "bad date", entries: []*database.Entry{{ID: 1, Date: "\x00", Text: "fine"}}},
		{name: "nil entry", entries: []*database.Entry{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := ToDocument(tt.entries)
			assert.ErrorIs(t, err, ErrExportPackaging)
			assert.Nil(t, content)
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "plain", text: "hello"},
		{name: "empty", text: ""},
		{name: "whitespace controls", text: "a\tb\r\nc"},
		{name: "emoji", text: "\U0001F600 ok"},
		{name: "bell", text: "beep\x07", wantErr: true},
		{name: "nul", text: "\x00", wantErr: true},
		{name: "noncharacter", text: "\uFFFE", wantErr: true},
		{name: "invalid utf-8", text: "hi\xff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArtifacts(t *testing.T) {
	entries := newestFirst()

	jsonArtifact, err := NewJSONArtifact(entries, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultJSONFileName, jsonArtifact.FileName)
	assert.Equal(t, MimeJSON, jsonArtifact.ContentType)
	assert.Equal(t, `attachment; filename=journalEntries.json`, jsonArtifact.ContentDisposition())

	documentArtifact, err := NewDocumentArtifact(entries, "my journal.docx")
	require.NoError(t, err)
	assert.Equal(t, "my journal.docx", documentArtifact.FileName)
	assert.Equal(t, MimeDocument, documentArtifact.ContentType)
	assert.Equal(t, `attachment; filename="my journal.docx"`, documentArtifact.ContentDisposition())

	_, err = NewDocumentArtifact([]*database.Entry{{Text: "\x01"}}, "")
	assert.ErrorIs(t, err, ErrExportPackaging)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	artifact := &Artifact{FileName: "../escape.json", ContentType: MimeJSON, Content: []byte("[]")}

	path, err := WriteFile(dir, artifact)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.json"), path)
	assert.False(t, strings.HasPrefix(filepath.Base(path), ".."))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(written))
}
