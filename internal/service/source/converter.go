package source

import (
	"context"
	"mime"
	"strings"
	"sync"
)

// Supported upload types.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Converter turns the raw bytes of one file type into plain text.
type Converter interface {
	Convert(ctx context.Context, data []byte) (string, error)
	MIMETypes() []string
	// Name is the short type name used in error messages, e.g. "PDF".
	Name() string
}

// ConverterRegistry routes files to converters by MIME type.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]Converter // key: media type without parameters
}

// NewConverterRegistry creates a registry with the text, PDF and DOCX
// converters registered.
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{converters: make(map[string]Converter)}
	r.Register(NewTextConverter())
	r.Register(NewPDFConverter())
	r.Register(NewDOCXConverter())
	return r
}

// Register associates a converter with each of its MIME types.
func (r *ConverterRegistry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range c.MIMETypes() {
		r.converters[mediaType(t)] = c
	}
}

// Get returns the converter for a MIME type, or nil. Parameters such as
// charset are ignored.
func (r *ConverterRegistry) Get(mimeType string) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[mediaType(mimeType)]
}

func mediaType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	base, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
