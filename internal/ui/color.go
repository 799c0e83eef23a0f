// Package ui provides colored console output for berth commands.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
)

// Printer writes decorated messages to a single writer, usually a
// command's stdout.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Writer returns the underlying writer for raw output.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Success prints a green success message with checkmark.
func (p *Printer) Success(format string, args ...any) {
	Green.Fprintf(p.w, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func (p *Printer) Error(format string, args ...any) {
	Red.Fprintf(p.w, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func (p *Printer) Warning(format string, args ...any) {
	Yellow.Fprintf(p.w, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func (p *Printer) Info(format string, args ...any) {
	Blue.Fprintf(p.w, format+"\n", args...)
}

// Step prints a numbered step in cyan.
func (p *Printer) Step(n int, format string, args ...any) {
	Cyan.Fprintf(p.w, "[%d] ", n)
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Header prints a bold header.
func (p *Printer) Header(format string, args ...any) {
	Bold.Fprintf(p.w, format+"\n", args...)
}

// Ship prints a docked-ship message.
func (p *Printer) Ship(format string, args ...any) {
	Green.Fprintf(p.w, "🚢 "+format+"\n", args...)
}

// Section prints a "--- name ---" separator.
func (p *Printer) Section(name string) {
	Blue.Fprintf(p.w, "--- %s ---\n", name)
}
