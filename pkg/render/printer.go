package render

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used for separators when the terminal size is unknown.
const DefaultWidth = 80

// Options is the printing policy applied around each record.
type Options struct {
	Separator bool
	Padding   bool
}

// Printer writes records and pass-through lines to a stream.
type Printer struct {
	w     io.Writer
	opts  Options
	hl    *Highlighter
	width func() int
}

// NewPrinter creates a printer writing to w. The separator width follows
// the terminal behind w when it is one.
func NewPrinter(w io.Writer, hl *Highlighter, opts Options) *Printer {
	return &Printer{
		w:     w,
		opts:  opts,
		hl:    hl,
		width: func() int { return TerminalWidth(w) },
	}
}

// SetWidthFunc overrides how the separator width is discovered.
func (p *Printer) SetWidthFunc(fn func() int) { p.width = fn }

// Record prints a rendered record with the configured separator and padding.
func (p *Printer) Record(s string) error {
	if p.opts.Separator {
		if _, err := fmt.Fprintln(p.w, p.hl.Separator(p.width())); err != nil {
			return err
		}
		if p.opts.Padding {
			if _, err := fmt.Fprintln(p.w); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintln(p.w, s); err != nil {
		return err
	}
	if p.opts.Padding {
		_, err := fmt.Fprintln(p.w)
		return err
	}
	return nil
}

// Raw prints a line that was not JSON exactly as it was read.
func (p *Printer) Raw(line string) error {
	_, err := fmt.Fprintln(p.w, line)
	return err
}

// TerminalWidth returns the column count of the terminal behind w, or
// DefaultWidth when w is not a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
