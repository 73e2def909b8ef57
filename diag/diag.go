// Package diag provides a configurable error sink: runtime and parse
// errors are reported through a Sink rather than written straight to
// stdout, so a caller can capture, filter, or redirect them.
package diag

import (
	"fmt"
	"io"
)

// Sink receives human-readable diagnostic messages. Implementations must
// be safe to call from a single interpreter goroutine; no concurrent-use
// guarantee is required.
type Sink interface {
	Report(message string)
}

// Writer adapts an io.Writer into a Sink, one message per line.
type Writer struct {
	W io.Writer
}

// NewWriter returns a Sink that writes each message to w on its own line.
func NewWriter(w io.Writer) *Writer {
	return &Writer{W: w}
}

func (s *Writer) Report(message string) {
	fmt.Fprintln(s.W, message)
}

// Runtime formats and reports a runtime error with the standard
// "Runtime error: " prefix.
func Runtime(sink Sink, format string, args ...interface{}) {
	sink.Report("Runtime error: " + fmt.Sprintf(format, args...))
}

// Collector is a Sink that also accumulates every message it receives, so
// a caller (the CLI, the language server, or a test) can inspect what was
// reported instead of only observing side effects.
type Collector struct {
	Messages []string
	inner    Sink
}

// NewCollector wraps inner (which may be nil to only collect, without
// forwarding anywhere).
func NewCollector(inner Sink) *Collector {
	return &Collector{inner: inner}
}

func (c *Collector) Report(message string) {
	c.Messages = append(c.Messages, message)
	if c.inner != nil {
		c.inner.Report(message)
	}
}

// Nop discards every message. Useful in tests that only assert on
// returned values, not on diagnostic text.
type Nop struct{}

func (Nop) Report(string) {}
