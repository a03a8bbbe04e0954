package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/koggi-dev/koggi/internal/output"
)

var (
	// ErrCancelled means the user backed out of the selection. It is
	// not a failure; callers should exit quietly.
	ErrCancelled = errors.New("selection cancelled")

	// ErrNoBackups means the backup directory held no candidate files.
	ErrNoBackups = errors.New("no backup files found")
)

// Raw-mode control bytes treated as cancellation. In raw mode Ctrl-C
// arrives as a byte instead of raising SIGINT.
const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// Selector drives the interactive paginated backup chooser.
// Keys and Out are injectable so tests can script keystrokes and
// capture output without a terminal.
type Selector struct {
	Keys     KeyReader
	Out      io.Writer
	PageSize int
}

// NewSelector returns a selector wired to stdin/stdout with the default
// page size of 10.
func NewSelector() *Selector {
	return &Selector{
		Keys:     NewKeyReader(os.Stdin),
		Out:      os.Stdout,
		PageSize: 10,
	}
}

// Select lists the backup files in dir and blocks on single keystrokes
// until the user picks one (returned as its path), quits, or the input
// stream ends. Pagination state lives entirely within this call.
func (s *Selector) Select(dir string) (string, error) {
	files := List(dir)
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoBackups, dir)
	}

	rows := make([]output.BackupFile, len(files))
	for i, f := range files {
		rows[i] = output.BackupFile{
			Name:      filepath.Base(f.Path),
			SizeBytes: f.Size,
			ModTime:   f.ModTime,
		}
	}

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := (len(files) + pageSize - 1) / pageSize
	page := 0

	for {
		fmt.Fprint(s.Out, output.RenderBackupPage(rows, page, pageSize))
		fmt.Fprintln(s.Out, "Navigation: [n]ext  [p]rev  [h]elp  [q]uit  1-9 select")
		fmt.Fprint(s.Out, "Select backup file: ")

		key, err := s.Keys.ReadKey()
		if err != nil {
			// EOF or a broken input stream is the same as quitting.
			fmt.Fprintln(s.Out, "\nCancelled")
			return "", ErrCancelled
		}

		switch {
		case key == 'q' || key == keyCtrlC || key == keyCtrlD:
			fmt.Fprintln(s.Out, "\nCancelled")
			return "", ErrCancelled

		case key == 'n':
			if page < totalPages-1 {
				page++
			} else {
				s.notice("Already on last page")
			}

		case key == 'p':
			if page > 0 {
				page--
			} else {
				s.notice("Already on first page")
			}

		case key == 'h':
			s.help()

		case key >= '1' && key <= '9':
			choice := int(key - '0')
			onPage := len(files) - page*pageSize
			if onPage > pageSize {
				onPage = pageSize
			}
			if choice > onPage {
				s.notice(fmt.Sprintf("Invalid selection. Choose 1-%d", onPage))
				continue
			}
			selected := files[page*pageSize+choice-1]
			fmt.Fprintf(s.Out, "\nSelected: %s\n", filepath.Base(selected.Path))
			return selected.Path, nil

		default:
			s.notice("Invalid key. Press 'h' for help.")
		}
	}
}

// notice shows msg and waits for one keypress so it stays readable
// before the next page redraw.
func (s *Selector) notice(msg string) {
	fmt.Fprintf(s.Out, "\n%s\n", msg)
	fmt.Fprintln(s.Out, "Press any key to continue...")
	s.Keys.ReadKey()
}

// help shows the key bindings and waits for one keypress.
func (s *Selector) help() {
	fmt.Fprint(s.Out, `
Navigation help:
  1-9  select backup file by number
  n    next page
  p    previous page
  h    show this help
  q    quit without selecting

Press any key to continue...
`)
	s.Keys.ReadKey()
}
