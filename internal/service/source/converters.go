package source

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// textConverter passes UTF-8 text through.
type textConverter struct{}

// NewTextConverter creates the plain text converter.
func NewTextConverter() Converter { return textConverter{} }

func (textConverter) Convert(ctx context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

func (textConverter) MIMETypes() []string { return []string{MIMEText} }
func (textConverter) Name() string        { return "text" }

// pdfConverter extracts plain text page by page.
type pdfConverter struct{}

// NewPDFConverter creates the PDF converter.
func NewPDFConverter() Converter { return pdfConverter{} }

func (pdfConverter) Convert(ctx context.Context, data []byte) (text string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		content = collapseSpaces(content)
		if content == "" {
			continue
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(content)
	}
	return out.String(), nil
}

func (pdfConverter) MIMETypes() []string { return []string{MIMEPDF} }
func (pdfConverter) Name() string        { return "PDF" }

// docxConverter reads the paragraphs of word/document.xml.
type docxConverter struct{}

// NewDOCXConverter creates the DOCX converter.
func NewDOCXConverter() Converter { return docxConverter{} }

func (docxConverter) Convert(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx archive: %w", err)
	}

	body, err := readZipFile(zr.File, "word/document.xml")
	if err != nil {
		return "", err
	}

	paragraphs, err := docxParagraphs(body)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

func (docxConverter) MIMETypes() []string { return []string{MIMEDOCX} }
func (docxConverter) Name() string        { return "DOCX" }

func readZipFile(files []*zip.File, target string) ([]byte, error) {
	for _, f := range files {
		if !strings.EqualFold(f.Name, target) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("file not found in archive: %s", target)
}

// docxParagraphs returns the text of every non-empty w:p element. Runs are
// concatenated; w:tab and w:br become whitespace.
func docxParagraphs(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		out         []string
		text        strings.Builder
		inParagraph bool
		inText      bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				text.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(text.String()); p != "" {
					out = append(out, p)
				}
				inParagraph = false
				inText = false
				text.Reset()
			}
		}
	}
	return out, nil
}

// collapseSpaces trims every line, squeezes runs of spaces and drops blank lines.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
