package models

import "testing"

func TestUserCollection(t *testing.T) {
	if got := UserCollection("alice"); got != "user_alice_docs" {
		t.Errorf("UserCollection() = %q", got)
	}
}

func TestFileIdentifier(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", "report_pdf"},
		{"/uploads/alice/notes.txt", "notes_txt"},
		{"archive.tar.gz", "archive_tar_gz"},
	}
	for _, tt := range tests {
		if got := FileIdentifier(tt.path); got != tt.want {
			t.Errorf("FileIdentifier(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestURLIdentifier_Stable(t *testing.T) {
	a := URLIdentifier("https://example.com/page")
	b := URLIdentifier("https://example.com/page")
	if a != b {
		t.Error("same URL should yield the same identifier")
	}
	if len(a) != 32 {
		t.Errorf("identifier length = %d, want 32 hex chars", len(a))
	}
	if a == URLIdentifier("https://example.com/other") {
		t.Error("different URLs should yield different identifiers")
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("report_pdf", 2); got != "report_pdf_doc_2" {
		t.Errorf("ChunkID() = %q", got)
	}
}
