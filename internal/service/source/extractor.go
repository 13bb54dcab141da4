// Package source turns uploaded files into plain text for generation.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"

	"infinitism/internal/domain"
)

// UploadedFile is one file received from a client.
type UploadedFile struct {
	Filename    string
	ContentType string // as declared by the client, may be empty
	Data        []byte
}

// Source is the text extracted from an upload.
type Source struct {
	Text      string `json:"text"`
	MIMEType  string `json:"mime_type"`
	Filename  string `json:"filename"`
	WordCount int    `json:"word_count"`
}

// Extractor resolves an upload's type and runs the matching converter.
type Extractor struct {
	registry *ConverterRegistry
	maxBytes int64
	logger   *slog.Logger
}

// NewExtractor creates an extractor. maxBytes <= 0 disables the size check.
func NewExtractor(registry *ConverterRegistry, maxBytes int64, logger *slog.Logger) *Extractor {
	return &Extractor{registry: registry, maxBytes: maxBytes, logger: logger}
}

// Extract returns the file's text. Unsupported types yield
// *domain.UnsupportedMediaTypeError; unreadable or empty files yield
// *domain.ExtractionError and no partial text.
func (e *Extractor) Extract(ctx context.Context, file UploadedFile) (*Source, error) {
	if e.maxBytes > 0 && int64(len(file.Data)) > e.maxBytes {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("file exceeds the %d byte upload limit", e.maxBytes),
		}
	}

	mimeType := DetectType(file.ContentType, file.Data)
	conv := e.registry.Get(mimeType)
	if conv == nil {
		e.logger.Debug("unsupported upload", "filename", file.Filename, "mime_type", mimeType)
		return nil, &domain.UnsupportedMediaTypeError{MIMEType: mimeType}
	}

	failure := fmt.Sprintf("Failed to extract text from %s file", conv.Name())

	text, err := conv.Convert(ctx, file.Data)
	if err != nil {
		e.logger.Warn("source extraction failed",
			"filename", file.Filename,
			"mime_type", mimeType,
			"error", err,
		)
		return nil, &domain.ExtractionError{Message: failure, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ExtractionError{Message: failure + ": no text found"}
	}

	src := &Source{
		Text:      text,
		MIMEType:  mediaType(mimeType),
		Filename:  file.Filename,
		WordCount: CountWords(text),
	}

	e.logger.Info("source extracted",
		"filename", file.Filename,
		"mime_type", src.MIMEType,
		"converter", conv.Name(),
		"word_count", src.WordCount,
	)
	return src, nil
}

// DetectType returns the declared type unless it is missing or generic, in
// which case the content is sniffed.
func DetectType(declared string, data []byte) string {
	mt := mediaType(declared)
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}
	return mediaType(mimetype.Detect(data).String())
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}
