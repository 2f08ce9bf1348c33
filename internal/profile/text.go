package profile

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

var (
	// ErrUnsupportedFormat is returned for files other than .pdf and .docx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDocument is returned when no text could be extracted.
	ErrEmptyDocument = errors.New("could not extract text from file")
)

const docxBody = "word/document.xml"

// Reader extracts plain text from résumé files.
type Reader struct {
	pdf *pdf.PDFParser
}

func NewReader(ctx context.Context) (*Reader, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}
	return &Reader{pdf: p}, nil
}

// ReadFile returns the text of a .pdf or .docx file.
func (r *Reader) ReadFile(ctx context.Context, path string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = r.readPDF(ctx, path)
	case ".docx":
		text, err = readDOCX(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func (r *Reader) readPDF(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	docs, err := r.pdf.Parse(ctx, file, einoParser.WithURI(path))
	if err != nil {
		return "", fmt.Errorf("parse pdf %s: %w", path, err)
	}

	var b strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		b.WriteString(doc.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func readDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != docxBody {
			continue
		}

		body, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer body.Close()

		return documentText(body)
	}

	return "", fmt.Errorf("%s not found in %s", docxBody, path)
}

// documentText collects the text runs of a WordprocessingML body, one line
// per paragraph.
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		b      bytes.Buffer
		inText bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", docxBody, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
