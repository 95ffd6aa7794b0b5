package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown replies into terminal output. It keeps one
// glamour.TermRenderer per wrap width, so a resized chat builds a new one
// only for widths it has not seen. Calls are serialized because a
// TermRenderer must not render concurrently.
type Renderer struct {
	opts Options

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// NewRenderer creates a Renderer; opts.Width is the width used when a call passes 0
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts:    opts,
		byWidth: make(map[int]*glamour.TermRenderer),
	}
}

// Markdown renders content wrapped at width
func (r *Renderer) Markdown(content string, width int) (string, error) {
	if width <= 0 {
		width = r.opts.Width
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.byWidth[width]
	if !ok {
		var err error
		tr, err = newTermRenderer(r.opts.WithWidth(width))
		if err != nil {
			return "", err
		}
		r.byWidth[width] = tr
	}
	return tr.Render(content)
}

// Reply renders a bot reply, falling back to the raw text when rendering fails.
// Surrounding blank lines added by glamour are trimmed.
func (r *Renderer) Reply(text string, width int) string {
	out, err := r.Markdown(text, width)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	tr, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return tr, nil
}
