package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// lineWriter is an io.Writer that splits its input stream into lines and
// writes those lines to an underlying logger.
type lineWriter struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous
	// write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end
// of a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *lineWriter) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It is designed so that a nil *Logger is
// usable and simply discards output, which lets components accept an
// optional logger without a separate nil check at every call site. Each
// Logger wraps its own standard-library *log.Logger writing to a specific
// destination (a section's log file, or standard error), so that distinct
// sections of a running system can be routed to distinct destinations,
// unlike a single process-wide logger.
type Logger struct {
	// output is the underlying standard library logger.
	output *log.Logger
	// level is the most verbose tier this logger emits: a message is
	// written only if its tier is at or below level.
	level Level
	// prefix is any prefix specified for the logger.
	prefix string
}

// New creates a new root logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		output: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// NewStandardError creates a root logger writing to standard error.
func NewStandardError(level Level) *Logger {
	return New(os.Stderr, level)
}

// Sublogger creates a new sublogger with the specified name, sharing the
// parent's destination and level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		output: l.output,
		level:  l.level,
		prefix: prefix,
	}
}

// line formats a log line with the logger's prefix, if any.
func (l *Logger) line(s string) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s", l.prefix, s)
	}
	return s
}

// Print logs information with semantics equivalent to fmt.Print, gated at
// LevelInfo.
func (l *Logger) Print(v ...any) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprint(v...)))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf, gated at
// LevelInfo.
func (l *Logger) Printf(format string, v ...any) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprintf(format, v...)))
	}
}

// Println logs information with semantics equivalent to fmt.Println, gated
// at LevelInfo.
func (l *Logger) Println(v ...any) {
	if l != nil && l.level >= LevelInfo {
		l.output.Output(3, l.line(fmt.Sprintln(v...)))
	}
}

// Writer returns an io.Writer that writes lines using Println. Useful for
// piping a subprocess's captured stderr into the logger a line at a time.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &lineWriter{callback: l.Println}
}

// Debug logs information with semantics equivalent to fmt.Print, gated at
// LevelDebug.
func (l *Logger) Debug(v ...any) {
	if l != nil && l.level >= LevelDebug {
		l.output.Output(3, l.line(fmt.Sprint(v...)))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, gated at
// LevelDebug.
func (l *Logger) Debugf(format string, v ...any) {
	if l != nil && l.level >= LevelDebug {
		l.output.Output(3, l.line(fmt.Sprintf(format, v...)))
	}
}

// Warn logs a warning, gated at LevelWarn.
func (l *Logger) Warn(v ...any) {
	if l != nil && l.level >= LevelWarn {
		l.output.Output(3, l.line(color.YellowString("warning: %s", fmt.Sprint(v...))))
	}
}

// Warnf logs a formatted warning, gated at LevelWarn.
func (l *Logger) Warnf(format string, v ...any) {
	if l != nil && l.level >= LevelWarn {
		l.output.Output(3, l.line(color.YellowString("warning: "+format, v...)))
	}
}

// Error logs error information, gated at LevelError.
func (l *Logger) Error(err error) {
	if l != nil && l.level >= LevelError {
		l.output.Output(3, l.line(color.RedString("error: %v", err)))
	}
}

// Errorf logs formatted error information, gated at LevelError.
func (l *Logger) Errorf(format string, v ...any) {
	if l != nil && l.level >= LevelError {
		l.output.Output(3, l.line(color.RedString("error: "+format, v...)))
	}
}
