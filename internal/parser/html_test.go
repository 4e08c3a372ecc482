package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Paragraphs(t *testing.T) {
	input := `<html><head><title>Pride and Prejudice</title><style>p{}</style></head>
<body>
<nav>Home | Next</nav>
<p>*** START OF THE PROJECT GUTENBERG EBOOK 1342 ***</p>
<h2>Chapter I</h2>
<p>It is a truth universally acknowledged,<br>that a single man</p>
<div><p>in possession of a good fortune.</p><script>var x;</script></div>
<p>*** END OF THE PROJECT GUTENBERG EBOOK 1342 ***</p>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "pg1342.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Pride and Prejudice" {
		t.Errorf("expected title %q, got %q", "Pride and Prejudice", doc.Title)
	}

	want := "*** START OF THE PROJECT GUTENBERG EBOOK 1342 ***\n\n" +
		"Chapter I\n\n" +
		"It is a truth universally acknowledged,\nthat a single man\n\n" +
		"in possession of a good fortune.\n\n" +
		"*** END OF THE PROJECT GUTENBERG EBOOK 1342 ***"
	if doc.Text != want {
		t.Errorf("unexpected text:\n got %q\nwant %q", doc.Text, want)
	}
}

func TestHTMLParser_TitleFallsBackToFilename(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<p>text</p>"), "dir/book.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "book" {
		t.Errorf("expected title %q, got %q", "book", doc.Title)
	}
	if doc.Text != "text" {
		t.Errorf("expected %q, got %q", "text", doc.Text)
	}
}
