package extract

import "strings"

// Markers delimit the substantive body of a document from its front and
// back matter.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers are the current Project Gutenberg sentinels.
var DefaultMarkers = Markers{
	Start: "START OF THE PROJECT GUTENBERG",
	End:   "END OF THE PROJECT GUTENBERG",
}

// legacyMarkers are older Gutenberg variants, tried after DefaultMarkers.
var legacyMarkers = []Markers{
	{Start: "START OF THIS PROJECT GUTENBERG", End: "END OF THIS PROJECT GUTENBERG"},
	{Start: "*END*THE SMALL PRINT", End: "End of the Project Gutenberg"},
	{Start: "*END*THE SMALL PRINT", End: "End of Project Gutenberg"},
}

// Body returns the text strictly between the first newline after start and
// the first occurrence of end, trimmed. When either marker is missing the
// whole input is returned trimmed.
func Body(text, start, end string) string {
	body, ok := between(text, start, end)
	if !ok {
		return strings.TrimSpace(text)
	}
	return body
}

// Gutenberg extracts the body using the first marker pair found in text,
// falling back to the trimmed input when none match.
func Gutenberg(text string) string {
	candidates := append([]Markers{DefaultMarkers}, legacyMarkers...)
	for _, m := range candidates {
		if body, ok := between(text, m.Start, m.End); ok {
			return body
		}
	}
	return strings.TrimSpace(text)
}

// WithMarkers extracts with explicit markers when both are set and uses the
// Gutenberg candidates otherwise.
func WithMarkers(text string, m Markers) string {
	if m.Start == "" || m.End == "" {
		return Gutenberg(text)
	}
	return Body(text, m.Start, m.End)
}

func between(text, start, end string) (string, bool) {
	if start == "" || end == "" {
		return "", false
	}
	startIdx := strings.Index(text, start)
	endIdx := strings.Index(text, end)
	if startIdx == -1 || endIdx == -1 {
		return "", false
	}

	nl := strings.IndexByte(text[startIdx:], '\n')
	if nl == -1 {
		return "", false
	}
	bodyStart := startIdx + nl + 1
	if endIdx < bodyStart {
		return "", false
	}
	return strings.TrimSpace(text[bodyStart:endIdx]), true
}
