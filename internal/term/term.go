package term

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// Key is a single decoded keyboard event. Printable keys carry their
// rune; special keys use the named constants.
type Key struct {
	Name string
	Rune rune
}

// Named special keys
const (
	KeySpace = "space"
	KeyUp    = "up"
	KeyDown  = "down"
	KeyLeft  = "left"
	KeyRight = "right"
	KeyCtrlC = "ctrl+c"
	KeyRune  = "rune"
)

// Terminal wraps raw-mode input and the handful of ANSI control
// sequences the player needs. Open starts a background reader feeding
// the key channel; Restore must run on every exit path.
type Terminal struct {
	fd       int
	oldState *term.State
	keys     chan Key
}

// Open switches stdin to raw mode, hides the cursor and starts the
// key-reader goroutine.
func Open() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}

	t := &Terminal{
		fd:       fd,
		oldState: oldState,
		keys:     make(chan Key, 16),
	}
	t.hideCursor()

	go t.readLoop()
	return t, nil
}

// Restore disables raw mode and shows the cursor again. Safe to call
// more than once.
func (t *Terminal) Restore() error {
	t.showCursor()
	if t.oldState == nil {
		return nil
	}
	err := term.Restore(t.fd, t.oldState)
	t.oldState = nil
	return err
}

// readLoop decodes raw bytes from stdin into Key events. Arrow keys
// arrive as ESC [ A..D sequences in raw mode.
func (t *Terminal) readLoop() {
	buf := make([]byte, 8)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		for _, key := range decode(buf[:n]) {
			select {
			case t.keys <- key:
			default:
				// Input flood; drop rather than block the reader.
			}
		}
	}
}

// decode translates a raw read into zero or more key events.
func decode(b []byte) []Key {
	var keys []Key
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == 0x1b && i+2 < len(b) && b[i+1] == '[':
			switch b[i+2] {
			case 'A':
				keys = append(keys, Key{Name: KeyUp})
			case 'B':
				keys = append(keys, Key{Name: KeyDown})
			case 'C':
				keys = append(keys, Key{Name: KeyRight})
			case 'D':
				keys = append(keys, Key{Name: KeyLeft})
			}
			i += 2
		case b[i] == 0x03:
			keys = append(keys, Key{Name: KeyCtrlC})
		case b[i] == ' ':
			keys = append(keys, Key{Name: KeySpace})
		case b[i] >= 0x20:
			keys = append(keys, Key{Name: KeyRune, Rune: rune(b[i])})
		}
	}
	return keys
}

// PollKey waits up to timeout for a key event. The second return is
// false if the wait elapsed without input.
func (t *Terminal) PollKey(timeout time.Duration) (Key, bool) {
	if timeout <= 0 {
		select {
		case key := <-t.keys:
			return key, true
		default:
			return Key{}, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case key := <-t.keys:
		return key, true
	case <-timer.C:
		return Key{}, false
	}
}

// Width returns the terminal width in columns, defaulting to 80.
func (t *Terminal) Width() int {
	if cols, _, err := term.GetSize(t.fd); err == nil && cols > 0 {
		return cols
	}
	return 80
}

// CarriageReturn moves the cursor back to column 0.
func (t *Terminal) CarriageReturn() {
	fmt.Print("\r")
}

// ClearLine erases the current line and returns to column 0.
func (t *Terminal) ClearLine() {
	fmt.Print("\r\033[2K")
}

// SetTitle sets the terminal window title.
func (t *Terminal) SetTitle(title string) {
	fmt.Printf("\033]0;%s\007", title)
}

func (t *Terminal) hideCursor() {
	fmt.Print("\033[?25l")
}

func (t *Terminal) showCursor() {
	fmt.Print("\033[?25h")
}
