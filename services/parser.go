package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Supported MIME types for document upload.
const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC      = "application/msword"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
)

// MaxFileSize is the upload limit in bytes.
const MaxFileSize = 10 * 1024 * 1024 // 10MB

// DocumentMetadata is best-effort metadata captured during parsing. Only the
// PDF parser fills it; word-processor and plain-text parsers leave it empty.
type DocumentMetadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
}

// ParsedDocument is the result of extracting text from a raw file buffer.
type ParsedDocument struct {
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata,omitempty"`
}

// IsSupportedFileType reports whether a MIME type has a parser.
func IsSupportedFileType(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimeDOCX, MimeDOC, MimeText, MimeMarkdown:
		return true
	}
	return false
}

// ParseFile extracts plain text from a raw byte buffer based on its declared
// MIME type. The filename is used for error messages only. Any parser
// failure is wrapped into a ParseError; no partial text is ever returned.
func ParseFile(data []byte, mimeType string, filename string) (*ParsedDocument, error) {
	switch mimeType {
	case MimePDF:
		parsed, err := parsePDF(data)
		if err != nil {
			return nil, &ParseError{Filename: filename, Err: err}
		}
		return parsed, nil

	case MimeDOCX, MimeDOC:
		text, err := extractWordText(data)
		if err != nil {
			return nil, &ParseError{Filename: filename, Err: err}
		}
		return &ParsedDocument{Text: text}, nil

	case MimeText, MimeMarkdown:
		return &ParsedDocument{Text: string(data)}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

func parsePDF(data []byte) (*ParsedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
	}

	parsed := &ParsedDocument{
		Text:     textBuilder.String(),
		Metadata: DocumentMetadata{PageCount: pages},
	}

	// Title and author live in the trailer's Info dictionary when present.
	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		if title := info.Key("Title"); title.Kind() == pdf.String {
			parsed.Metadata.Title = title.Text()
		}
		if author := info.Key("Author"); author.Kind() == pdf.String {
			parsed.Metadata.Author = author.Text()
		}
	}

	return parsed, nil
}

// extractWordText pulls raw text out of an OOXML word-processor file. A
// .docx is a zip archive; the document body is word/document.xml and the
// visible text sits in <w:t> elements. Formatting is discarded.
func extractWordText(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" { // <w:t>
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					buf.WriteString(text + " ")
				}
			}
		}
	}

	return strings.TrimSpace(buf.String()), nil
}
