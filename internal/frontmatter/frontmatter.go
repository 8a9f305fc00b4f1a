// Package frontmatter separates YAML front matter from Markdown documents.
package frontmatter

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Header holds the front matter fields notesift understands. Other keys are ignored.
type Header struct {
	Title   string `yaml:"title"`
	Created string `yaml:"created"`
}

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedAt parses the created field. Dates without a zone are taken as UTC.
func (h Header) CreatedAt() (time.Time, bool) {
	s := strings.TrimSpace(h.Created)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Split separates front matter (between leading --- delimiters) from the
// body. ok is false when there is no well-formed front matter, in which
// case body is text unchanged.
func Split(text string) (h Header, body string, ok bool) {
	trimmed := strings.TrimLeft(text, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return Header{}, text, false
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return Header{}, text, false
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]

	if err := yaml.Unmarshal([]byte(block), &h); err != nil {
		// Malformed YAML: keep the document as plain text.
		return Header{}, text, false
	}
	return h, strings.TrimLeft(after, "\n\r"), true
}
