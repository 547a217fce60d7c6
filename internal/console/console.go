package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultPrompt is used when no prompt is configured.
const DefaultPrompt = "Alarm> "

const (
	byteInterrupt = 0x03
	byteEOF       = 0x04
	byteBackspace = 0x7f
)

// Console owns the terminal. All writers go through Print (directly or via
// the io.Writer side), which holds the lock for the clear/write/redraw
// sequence so lines stay atomic with respect to concurrent input.
type Console struct {
	mu     sync.Mutex
	in     io.Reader
	out    io.Writer
	inFile *os.File
	reader *bufio.Reader
	prompt string
	input  []byte
	raw    bool
	saved  *term.State
}

// New builds a console over the given streams. Raw-mode input handling is
// only attempted when in is a terminal file descriptor.
func New(in io.Reader, out io.Writer, prompt string) *Console {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	c := &Console{
		in:     in,
		out:    out,
		prompt: prompt,
	}

	if f, ok := in.(*os.File); ok {
		c.inFile = f
	} else {
		c.reader = bufio.NewReader(in)
	}

	return c
}

// Start switches the terminal to raw character-by-character input when
// stdin is a terminal, and draws the initial prompt. On non-terminals it
// only sets up the buffered line reader used by ReadLine.
func (c *Console) Start() error {
	if c.inFile == nil || !term.IsTerminal(int(c.inFile.Fd())) {
		if c.reader == nil {
			c.reader = bufio.NewReader(c.inFile)
		}

		return nil
	}

	saved, err := term.MakeRaw(int(c.inFile.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}

	c.mu.Lock()
	c.raw = true
	c.saved = saved
	_, _ = io.WriteString(c.out, c.prompt)
	c.mu.Unlock()

	return nil
}

// Close restores the terminal state captured by Start.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.raw {
		return nil
	}

	c.raw = false

	_, _ = io.WriteString(c.out, "\r\n")

	if err := term.Restore(int(c.inFile.Fd()), c.saved); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}

	return nil
}

// Print emits one output line. In raw mode it clears the current terminal
// line first and redraws the prompt plus the pending input afterwards.
func (c *Console) Print(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.printLocked(line)
}

func (c *Console) printLocked(line string) {
	if !c.raw {
		fmt.Fprintln(c.out, line)

		return
	}

	fmt.Fprintf(c.out, "\r\x1b[K%s\r\n%s%s", line, c.prompt, c.input)
}

// Write lets the console serve as the zap output sink: each newline-
// separated chunk goes through the same clear/redraw path as Print.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		c.printLocked(line)
	}

	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. Output is unbuffered.
func (c *Console) Sync() error {
	return nil
}

// ReadLine returns the next input line without its terminator. In raw mode
// it assembles the line byte by byte, echoing input and handling
// backspace; otherwise it reads from the buffered reader. Interrupt and
// end-of-transmission bytes surface as io.EOF.
func (c *Console) ReadLine() (string, error) {
	c.mu.Lock()
	raw := c.raw
	c.mu.Unlock()

	if !raw {
		return c.readCooked()
	}

	return c.readRaw()
}

func (c *Console) readCooked() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}

		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) readRaw() (string, error) {
	single := make([]byte, 1)

	for {
		if _, err := c.inFile.Read(single); err != nil {
			return "", err
		}

		ch := single[0]

		c.mu.Lock()

		switch {
		case ch == '\r' || ch == '\n':
			line := string(c.input)
			c.input = c.input[:0]
			fmt.Fprintf(c.out, "\r\n%s", c.prompt)
			c.mu.Unlock()

			return line, nil

		case ch == byteInterrupt || ch == byteEOF:
			c.input = c.input[:0]
			c.mu.Unlock()

			return "", io.EOF

		case ch == byteBackspace || ch == '\b':
			if len(c.input) > 0 {
				c.input = c.input[:len(c.input)-1]
				_, _ = io.WriteString(c.out, "\b \b")
			}

			c.mu.Unlock()

		case ch >= 0x20:
			c.input = append(c.input, ch)
			_, _ = c.out.Write(single)
			c.mu.Unlock()

		default:
			// Ignore other control bytes.
			c.mu.Unlock()
		}
	}
}

// SetInput seeds the pending input buffer. Test hook for the redraw path.
func (c *Console) SetInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = append(c.input[:0], s...)
}

// forceRaw flips raw rendering without touching the terminal; used by
// tests that exercise the redraw sequence against a plain buffer.
func (c *Console) forceRaw() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raw = true
}
