// Package errors provides annotated errors that carry structured logging
// attributes and the source location of the wrap site, alongside drop-in
// re-exports of the standard library error helpers.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
)

// annotatedError wraps an error with a message, optional slog attributes, and
// the program counter of the Wrap call site.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	pc    uintptr
}

// New returns an error with the given text. Equivalent to the standard
// library New.
func New(text string) error {
	return stderrors.New(text)
}

// NewSentinel creates an error meant to be declared as a package-level
// sentinel and matched with Is.
func NewSentinel(text string) error {
	return stderrors.New(text)
}

// Wrap annotates err with a message and optional slog attributes. The wrap
// site is recorded so SlogError can point at the originating line.
func Wrap(err error, message string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and Wrap.
	return &annotatedError{
		msg:   message,
		err:   err,
		attrs: attrs,
		pc:    pcs[0],
	}
}

// Error implements the error interface in the conventional
// "context: root cause" form.
func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *annotatedError) Unwrap() error {
	return e.err
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the recovery site.
func DecoratePanic(recovered any) error {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	return &annotatedError{
		msg: fmt.Sprintf("panic: %v", recovered),
		pc:  pcs[0],
	}
}

// SlogError renders err as a structured "error" attribute group containing
// the message, all annotations collected from the error tree, and the source
// location of the outermost wrap site.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	var (
		annotations []any
		source      string
	)
	collectAnnotations(err, &annotations, &source)

	args := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	return slog.Group("error", args...)
}

// collectAnnotations walks the error tree gathering annotation attributes and
// the first wrap-site source location it encounters.
func collectAnnotations(err error, annotations *[]any, source *string) {
	for err != nil {
		if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the tree manually.
			for _, attr := range ae.attrs {
				*annotations = append(*annotations, attr)
			}
			if *source == "" && ae.pc != 0 {
				frame, _ := runtime.CallersFrames([]uintptr{ae.pc}).Next()
				if frame.File != "" {
					*source = filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
				}
			}
		}

		switch unwrapped := err.(type) { //nolint:errorlint // walking the tree manually.
		case interface{ Unwrap() []error }:
			for _, child := range unwrapped.Unwrap() {
				collectAnnotations(child, annotations, source)
			}
			return
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		default:
			return
		}
	}
}
