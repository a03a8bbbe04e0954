package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar renders byte-count progress for downloads.
// Example: [=========>          ] 45% 12 MB / 27 MB
// When the total is unknown (< 0) only the running byte count is shown.
// It implements io.Writer so it can sit in an io.MultiWriter next to
// the destination file.
type ProgressBar struct {
	total       int64
	current     int64
	description string
	width       int
	mu          sync.Mutex
	writer      io.Writer
}

// NewProgress creates a progress bar expecting total bytes. Pass a
// negative total when the size is not known up front.
func NewProgress(total int64, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       30,
		writer:      os.Stdout,
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Write advances the bar by len(b). It never fails, so a short write
// can not abort the surrounding io.Copy.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.Add(int64(len(b)))
	return len(b), nil
}

// Add advances the bar by n bytes and redraws it.
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current += n
	if p.total >= 0 && p.current > p.total {
		p.current = p.total
	}
	p.render()
}

// Finish completes the bar and moves to a new line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total >= 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.writer)
}

// render draws the bar (must be called with lock held). On a TTY the
// bar redraws in place with \r; elsewhere it prints nothing until
// Finish to keep logs quiet.
func (p *ProgressBar) render() {
	if !writerIsTTY(p.writer) {
		return
	}

	if p.total < 0 {
		fmt.Fprintf(p.writer, "\r%s %s", p.description, FormatSize(p.current))
		return
	}

	percent := 0
	if p.total > 0 {
		percent = int(p.current * 100 / p.total)
	}
	filled := p.width * percent / 100
	bar := strings.Repeat("=", filled)
	if filled < p.width {
		bar += ">" + strings.Repeat(" ", p.width-filled-1)
	}
	fmt.Fprintf(p.writer, "\r%s [%s] %3d%% %s / %s",
		p.description, bar, percent, FormatSize(p.current), FormatSize(p.total))
}
