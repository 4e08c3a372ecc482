package catalog

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `book_id,title,author,plain_text_url
1342,Pride and Prejudice,"Austen, Jane",https://www.gutenberg.org/ebooks/1342.txt.utf-8
35924,Civilization and Its Discontents,"Freud, Sigmund",https://www.gutenberg.org/ebooks/35924.txt.utf-8
,No ID,Nobody,
1342,Duplicate,Someone,
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	e, ok := c.Lookup("1342")
	require.True(t, ok)
	assert.Equal(t, Entry{
		BookID:       "1342",
		Title:        "Pride and Prejudice",
		Author:       "Austen, Jane",
		PlainTextURL: "https://www.gutenberg.org/ebooks/1342.txt.utf-8",
	}, e)

	_, ok = c.Lookup("9999")
	assert.False(t, ok)
	assert.Equal(t, "35924", c.Entries[1].BookID)
}

func TestParse_ColumnOrderAndExtras(t *testing.T) {
	in := "\ufefftitle,extra,BOOK_ID\nUlysses,x,4300\nShort,y\n"
	c, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Ulysses", c.Entries[0].Title)
	assert.Equal(t, "", c.Entries[0].Author)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("title,author\nx,y\n"))
	assert.ErrorContains(t, err, "book_id")
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/gutenberg_books.csv", []byte(sample), 0o644))

	c, err := Load(fs, "/data/gutenberg_books.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = Load(fs, "/data/missing.csv")
	assert.Error(t, err)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	_, ok := c.Lookup("1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
