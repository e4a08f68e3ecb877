package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
)

// Accepted transcript media types
const (
	MIMETypeText = "text/plain"
	MIMETypePDF  = "application/pdf"
)

var allowedTranscriptMIMEs = map[string]entities.TranscriptSource{
	MIMETypeText: entities.TranscriptSourceText,
	MIMETypePDF:  entities.TranscriptSourcePDF,
}

var extensionMIMEs = map[string]string{
	".txt": MIMETypeText,
	".pdf": MIMETypePDF,
}

// Artifact is an uploaded transcript file
type Artifact struct {
	FileName string
	MIMEType string
	Content  io.Reader
}

// Extracted is the normalized transcript text of an artifact
type Extracted struct {
	Text   string
	Source entities.TranscriptSource
}

// ResolveMIMEType normalizes the declared media type. Generic declarations
// (empty or application/octet-stream) fall back to the file extension.
func ResolveMIMEType(declared, fileName string) string {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt, ok := extensionMIMEs[strings.ToLower(filepath.Ext(fileName))]; ok {
			return byExt
		}
	}
	return mediaType
}

// Extractor turns uploaded artifacts into UTF-8 text
type Extractor struct {
	tempDir  string
	maxBytes int64
	logger   *zap.Logger
}

// NewExtractor creates an extractor. tempDir "" uses the OS default,
// maxBytes <= 0 disables the size limit.
func NewExtractor(tempDir string, maxBytes int64, logger *zap.Logger) *Extractor {
	return &Extractor{tempDir: tempDir, maxBytes: maxBytes, logger: logger}
}

// Extract reads the artifact according to its media type
func (e *Extractor) Extract(ctx context.Context, a Artifact) (*Extracted, error) {
	mimeType := ResolveMIMEType(a.MIMEType, a.FileName)
	source, ok := allowedTranscriptMIMEs[mimeType]
	if !ok {
		return nil, &ucErrors.UnsupportedFileTypeError{MIMEType: mimeType}
	}
	if a.Content == nil {
		return nil, fmt.Errorf("%w: empty upload", ucErrors.ErrExtractionFailed)
	}

	content := a.Content
	if e.maxBytes > 0 {
		content = io.LimitReader(a.Content, e.maxBytes+1)
	}

	var (
		text string
		err  error
	)
	switch source {
	case entities.TranscriptSourcePDF:
		text, err = e.extractPDF(ctx, content)
	default:
		text, err = e.extractText(content)
	}
	if err != nil {
		return nil, err
	}
	return &Extracted{Text: text, Source: source}, nil
}

func (e *Extractor) extractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", ucErrors.ErrExtractionFailed, err)
	}
	if e.maxBytes > 0 && int64(len(b)) > e.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ucErrors.ErrExtractionFailed, e.maxBytes)
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(b) {
		return strings.ToValidUTF8(string(b), "�"), nil
	}
	return string(b), nil
}

// extractPDF spools the upload to a temp file that is removed on every
// return path, then concatenates the text of all pages.
func (e *Extractor) extractPDF(ctx context.Context, r io.Reader) (text string, err error) {
	f, err := os.CreateTemp(e.tempDir, "transcript-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ucErrors.ErrExtractionFailed, err)
	}
	defer func() {
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && e.logger != nil {
			e.logger.Warn("failed to remove temp transcript", zap.String("path", f.Name()), zap.Error(rmErr))
		}
	}()

	size, err := io.Copy(f, r)
	if err != nil {
		return "", fmt.Errorf("%w: spool upload: %v", ucErrors.ErrExtractionFailed, err)
	}
	if size == 0 {
		return "", fmt.Errorf("%w: empty pdf", ucErrors.ErrExtractionFailed)
	}
	if e.maxBytes > 0 && size > e.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ucErrors.ErrExtractionFailed, e.maxBytes)
	}

	// the pdf package panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("%w: corrupt pdf: %v", ucErrors.ErrExtractionFailed, p)
		}
	}()

	reader, err := pdf.NewReader(f, size)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ucErrors.ErrExtractionFailed, err)
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ucErrors.ErrExtractionFailed, i, err)
		}
		if s := strings.TrimSpace(pageText); s != "" {
			pages = append(pages, s)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no extractable text", ucErrors.ErrExtractionFailed)
	}
	return strings.Join(pages, "\n\n"), nil
}
