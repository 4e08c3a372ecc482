package parser

import (
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Resolve returns filename unchanged when it has an extension. Otherwise it
// sniffs data and appends the extension of the first supported type in the
// detected type's hierarchy, so "1342" holding HTML becomes "1342.html".
// Empty data and undetectable content are treated as plain text.
func Resolve(filename string, data []byte) string {
	if filepath.Ext(filename) != "" {
		return filename
	}
	if len(data) == 0 {
		return filename + ".txt"
	}
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if ext := mt.Extension(); SupportedExtensions[ext] {
			return filename + ext
		}
	}
	return filename
}
