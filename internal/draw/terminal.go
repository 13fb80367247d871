package draw

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// ChunkWriter collects one frame of escape sequences and text, then hands it
// to the session writer in maxChunkSize pieces so SSH channels are not
// flooded by a single large write. Coordinates given to it are canvas
// coordinates; the centering offset is added on the way out.
type ChunkWriter struct {
	buf    strings.Builder
	out    *bufio.Writer
	num    [20]byte
	offCol int
	offRow int
}

func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the origin after the terminal was resized.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

// MoveCursor queues a cursor jump to the 1-based canvas cell (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.num[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.num[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
}

func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

func (cw *ChunkWriter) WriteByte(c byte) error {
	return cw.buf.WriteByte(c)
}

func (cw *ChunkWriter) WriteRune(r rune) {
	cw.buf.WriteRune(r)
}

// WriteAt queues s at the canvas cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.buf.WriteString(s)
}

// WriteCentered queues s centred on centerCol. Width is counted in runes, so
// s must be plain text; wrap styles around the call instead.
func (cw *ChunkWriter) WriteCentered(centerCol, row int, s string) {
	cw.WriteAt(centerCol-utf8.RuneCountInString(s)/2, row, s)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the queued frame and empties the queue.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.out.WriteString(data[:n]); err != nil {
			return fmt.Errorf("draw: flush frame: %w", err)
		}
		data = data[n:]
	}
	if err := cw.out.Flush(); err != nil {
		return fmt.Errorf("draw: flush frame: %w", err)
	}
	return nil
}

// TermSizeFunc reports the current terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the local terminal attached to stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// TerminalSizeRawWith returns the unclamped size reported by sizeFunc.
func TerminalSizeRawWith(sizeFunc TermSizeFunc) (width, height int, err error) {
	return sizeFunc()
}
