package object

import (
	"bytes"
	"fmt"
)

// Error is the single fatal error kind. Line is zero when unknown. Trace lists
// the function calls the error unwound through, innermost first.
type Error struct {
	Message string
	Line    int
	Trace   []StackFrame
}

type StackFrame struct {
	Function string
	Line     int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

func Errorf(format string, a ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func ErrorAt(line int, format string, a ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, a...), Line: line}
}

// WithLine attaches line to an *Error that has none yet.
func WithLine(err error, line int) error {
	if e, ok := err.(*Error); ok && e.Line == 0 && line > 0 {
		return &Error{Message: e.Message, Line: line, Trace: e.Trace}
	}
	return err
}

// WithFrame records that err unwound through a call of fn made at line.
func WithFrame(err error, fn string, line int) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	trace := append(append([]StackFrame(nil), e.Trace...), StackFrame{Function: fn, Line: line})
	return &Error{Message: e.Message, Line: e.Line, Trace: trace}
}

// RenderStacktrace formats err and its call trace for terminal output.
func RenderStacktrace(err *Error) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "error: %s", err.Message)
	if err.Line > 0 {
		fmt.Fprintf(&buf, "\n  at line %d", err.Line)
	}
	for _, frame := range err.Trace {
		fmt.Fprintf(&buf, "\n  in call to %s at line %d", frame.Function, frame.Line)
	}
	return buf.String()
}
