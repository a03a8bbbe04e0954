package backup

import (
	"io"
	"os"

	"golang.org/x/term"
)

// KeyReader reads one keystroke without echo or line buffering.
type KeyReader interface {
	ReadKey() (byte, error)
}

// NewKeyReader picks the keystroke implementation for f: raw terminal
// mode when f is a TTY, a plain byte reader for pipes and tests.
func NewKeyReader(f *os.File) KeyReader {
	if term.IsTerminal(int(f.Fd())) {
		return &termKeys{f: f}
	}
	return &streamKeys{r: f}
}

// termKeys reads from a real terminal. The terminal is switched into
// raw mode for the duration of a single read and always restored, so a
// crash between keystrokes cannot leave the terminal unusable.
type termKeys struct {
	f *os.File
}

func (t *termKeys) ReadKey() (byte, error) {
	fd := int(t.f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer term.Restore(fd, state)

	var buf [1]byte
	if _, err := t.f.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// streamKeys reads keystrokes from a plain byte stream.
type streamKeys struct {
	r io.Reader
}

func (s *streamKeys) ReadKey() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
