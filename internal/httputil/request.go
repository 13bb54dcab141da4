package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// MaxJSONBody bounds JSON request bodies.
const MaxJSONBody = 10 << 20

var (
	// ErrNoFile is returned by ParseUpload when the form has no file part.
	ErrNoFile = errors.New("no file uploaded")
	// ErrMultipleFiles is returned by ParseUpload when the form carries
	// more than one file under the same field.
	ErrMultipleFiles = errors.New("exactly one file may be uploaded per request")
)

// ParseJSON decodes the request body into dest.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// IsMultipart reports whether the request carries a multipart form.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// Upload is a single file read from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ParseUpload reads the multipart form (bounded by maxBytes plus a little
// room for the other parts) and returns the file under field. The remaining
// form values stay available through r.FormValue.
func ParseUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	if r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 1 {
		return nil, ErrMultipleFiles
	}

	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}

	return &Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
