package output

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownStyle is the glamour style for descriptions. The notty style
// renders without escape codes.
const MarkdownStyle = "notty"

var (
	mdMu        sync.Mutex
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// Markdown renders md wrapped at width. On renderer failure md is returned
// unchanged.
func Markdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	mdMu.Lock()
	defer mdMu.Unlock()
	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(MarkdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// MarkdownRenderer returns a description renderer for Printer.Detail.
func MarkdownRenderer(width int) func(string) string {
	return func(s string) string { return Markdown(s, width) }
}
