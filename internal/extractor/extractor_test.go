package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_JSON(t *testing.T) {
	path := writeFile(t, "data.json", `{"name":"test","items":[1,2]}`)

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// Pretty-printed re-serialization preserves structure as text.
	if !strings.Contains(text, `"name": "test"`) {
		t.Errorf("expected indented JSON, got:\n%s", text)
	}
	if !strings.Contains(text, "\n") {
		t.Error("expected multi-line output")
	}
}

func TestExtract_XML(t *testing.T) {
	path := writeFile(t, "data.xml", `<root><a>first</a><b><c> second </c></b>trailing</root>`)

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if text != "first second trailing" {
		t.Errorf("Extract() = %q, want %q", text, "first second trailing")
	}
}

func TestExtract_Markdown(t *testing.T) {
	content := "# Title\n\nSome *markdown* content."
	path := writeFile(t, "doc.md", content)

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != content {
		t.Errorf("markdown should be returned verbatim, got %q", text)
	}
}

func TestExtract_EmptyTxtGetsPlaceholder(t *testing.T) {
	path := writeFile(t, "empty.txt", "")

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "This is an empty text file." {
		t.Errorf("Extract() = %q, want placeholder", text)
	}
}

func TestExtract_Latin1Fallback(t *testing.T) {
	// 0xE9 is "é" in Latin-1 but invalid as a standalone UTF-8 byte.
	path := filepath.Join(t.TempDir(), "latin.txt")
	if err := os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "café" {
		t.Errorf("Extract() = %q, want %q", text, "café")
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "image.png", "not really a png")

	_, err := New().Extract(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_HTMLStripsChrome(t *testing.T) {
	path := writeFile(t, "page.html", `<html><head><title>T</title>
		<script>var x = 1;</script></head>
		<body><nav>Menu</nav><p>Visible content</p><footer>bye</footer></body></html>`)

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "Visible content") {
		t.Errorf("expected visible text, got %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "Menu") {
		t.Errorf("script/nav content should be stripped, got %q", text)
	}
}

// failingPartitioner simulates an unstructured-partitioning failure.
type failingPartitioner struct{}

func (failingPartitioner) Partition(string) ([]string, error) {
	return nil, errors.New("partition exploded")
}

func TestExtract_PartitionerFailureFallsBackToRawText(t *testing.T) {
	path := writeFile(t, "doc.html", "plain readable content")

	e := NewWithPartitioner(failingPartitioner{})
	text, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "plain readable content" {
		t.Errorf("expected raw text fallback, got %q", text)
	}
}

func TestExtract_EmptyResultGetsDocumentPlaceholder(t *testing.T) {
	path := writeFile(t, "blank.html", "<html><body></body></html>")

	text, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "blank.html") {
		t.Errorf("placeholder should reference the file name, got %q", text)
	}
}
