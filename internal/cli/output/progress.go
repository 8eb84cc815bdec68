package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Progress draws a single-line progress bar for a known number of
// operations. It is safe for concurrent use.
type Progress struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
	drawn   int
	mu      sync.Mutex
}

// NewProgress creates a progress bar for total operations.
func NewProgress(w io.Writer, title string, total int64) *Progress {
	return &Progress{
		w:     w,
		title: title,
		total: total,
		width: 30,
		drawn: -1,
	}
}

// Add records n completed operations. The bar is redrawn only when the
// percentage changes.
func (p *Progress) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if pct := p.percent(); pct != p.drawn {
		p.drawn = pct
		p.render()
	}
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drawn = p.percent()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *Progress) percent() int {
	if p.total <= 0 {
		return 100
	}
	return int(min(p.current, p.total) * 100 / p.total)
}

func (p *Progress) render() {
	filled := p.width * p.drawn / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", p.width-filled)
	fmt.Fprintf(p.w, "\r%s [%s] %3d%% (%d/%d)", p.title, bar, p.drawn, p.current, p.total)
}
