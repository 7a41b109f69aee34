package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/htmltext"
)

// DefaultPartitioner segments PDF, Word and HTML documents into ordered text
// elements.
type DefaultPartitioner struct{}

// NewPartitioner creates the default partitioner.
func NewPartitioner() *DefaultPartitioner {
	return &DefaultPartitioner{}
}

// Partition dispatches on file extension and returns the document's text
// elements in document order.
func (p *DefaultPartitioner) Partition(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return partitionPDF(path)
	case ".docx":
		return partitionDocx(path)
	case ".html", ".htm":
		return partitionHTML(path)
	default:
		return nil, fmt.Errorf("no partitioner for %s", filepath.Ext(path))
	}
}

// partitionPDF extracts one text element per PDF page.
func partitionPDF(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var elements []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		if s := strings.TrimSpace(text); s != "" {
			elements = append(elements, s)
		}
	}
	return elements, nil
}

// docx paragraph XML shape: text lives in w:t runs inside w:p paragraphs.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

// partitionDocx reads word/document.xml from the DOCX archive and returns one
// text element per paragraph.
func partitionDocx(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var elements []string
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range para.Runs {
			b.WriteString(run.Text)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			elements = append(elements, s)
		}
	}
	return elements, nil
}

// partitionHTML strips chrome elements and returns the visible text lines.
func partitionHTML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := htmltext.ExtractText(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var elements []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			elements = append(elements, line)
		}
	}
	return elements, nil
}
