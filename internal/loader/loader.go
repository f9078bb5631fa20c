package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrLoad              = errors.New("failed to load document")
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
	KindText Kind = "txt"
)

// KindFromFilename resolves the declared document kind from the file
// extension. This runs before any content is read, so unsupported
// uploads are rejected without touching the payload.
func KindFromFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDocx, nil
	case ".txt":
		return KindText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Load extracts plain text from the document at path.
func Load(path string, kind Kind) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = loadPDF(path)
	case KindDocx:
		text, err = loadDocx(path)
	case KindText:
		text, err = loadText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrLoad, kind, err)
	}
	return text, nil
}

func loadPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func loadDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	// GetContent returns the raw document XML; pull out the text runs.
	return extractTextRuns(r.Editable().GetContent(), "<w:t"), nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractTextRuns collects the contents of OOXML text elements such as
// <w:t> and <w:t xml:space="preserve">, joining runs with newlines.
func extractTextRuns(xmlContent, openTag string) string {
	closeTag := strings.Replace(openTag, "<", "</", 1) + ">"
	var sb strings.Builder
	rest := xmlContent
	for {
		start := strings.Index(rest, openTag)
		if start < 0 {
			break
		}
		rest = rest[start+len(openTag):]
		// Guard against prefix matches like <w:tbl>
		if len(rest) == 0 || (rest[0] != '>' && rest[0] != ' ' && rest[0] != '/') {
			continue
		}
		gt := strings.Index(rest, ">")
		if gt < 0 {
			break
		}
		if gt > 0 && rest[gt-1] == '/' { // self-closing, empty run
			rest = rest[gt+1:]
			continue
		}
		rest = rest[gt+1:]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			break
		}
		sb.WriteString(rest[:end])
		sb.WriteString("\n")
		rest = rest[end+len(closeTag):]
	}
	return sb.String()
}
