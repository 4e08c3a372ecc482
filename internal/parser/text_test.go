package parser

import (
	"strings"
	"testing"
)

func TestTextParser_KeepsTextVerbatim(t *testing.T) {
	input := "*** START OF THE PROJECT GUTENBERG EBOOK 1 ***\r\nLine one.\r\n\r\n\r\nLine two.\n"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "1342.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "1342" {
		t.Errorf("expected title %q, got %q", "1342", doc.Title)
	}
	if doc.Text != input {
		t.Errorf("expected verbatim text, got %q", doc.Text)
	}
}

func TestTextParser_DecodingIsTolerant(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("\xef\xbb\xbfHello \xffworld"), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", doc.Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("expected empty text, got %q", doc.Text)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.markdown", "d.html", "e.htm", "f.pdf", "g.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("books.csv"); err == nil {
		t.Error("expected error for .csv")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("expected .zip to be unsupported")
	}
}
