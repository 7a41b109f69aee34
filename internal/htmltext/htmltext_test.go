package htmltext

import (
	"strings"
	"testing"
)

func TestExtractText_StripsChrome(t *testing.T) {
	html := `<html><head><title>Page</title><style>body{}</style></head><body>
		<header>Site Header</header>
		<nav>Home | About</nav>
		<p>Actual content here.</p>
		<script>alert(1)</script>
		<footer>Footer text</footer>
	</body></html>`

	text, err := ExtractText(html)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Actual content here.") {
		t.Errorf("text missing content: %q", text)
	}
	for _, chrome := range []string{"Site Header", "Home | About", "alert(1)", "Footer text", "body{}"} {
		if strings.Contains(text, chrome) {
			t.Errorf("text should not contain %q", chrome)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  line one  \n\n\n   line two  \nlast\n"
	got := CollapseWhitespace(in)
	want := "line one\nline two\nlast"
	if got != want {
		t.Errorf("CollapseWhitespace() = %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>  Hello  </title></head></html>`, "Hello"},
		{"missing", `<html><body><p>no title</p></body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.html); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinks_PreservesOrderAndText(t *testing.T) {
	html := `<html><body>
		<a href="/first">First link text</a>
		<a href="https://example.com/second">Second link text</a>
		<span>not a link</span>
	</body></html>`

	links, err := Links(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Href != "/first" || links[0].Text != "First link text" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Href != "https://example.com/second" {
		t.Errorf("links[1] = %+v", links[1])
	}
}
