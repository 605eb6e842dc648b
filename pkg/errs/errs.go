// Package errs holds the failure kinds reported by stow operations.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Config marks a missing or unsafe configuration value.
	Config Kind = iota
	// Template marks a Dockerfile that could not be rendered.
	Template
	// IO marks a working directory or file write failure.
	IO
	// Spawn marks an external tool that could not be started.
	Spawn
	// Exit marks an external tool that ran and failed.
	Exit
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Template:
		return "template"
	case IO:
		return "io"
	case Spawn:
		return "spawn"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Error struct {
	Kind     Kind
	Op       string
	Path     string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Kind == Exit && e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configf(format string, args ...any) *Error {
	return &Error{Kind: Config, Op: "invalid config", Err: fmt.Errorf(format, args...)}
}

func IOPath(op, path string, err error) *Error {
	return &Error{Kind: IO, Op: op, Path: path, Err: err}
}

func Exited(op string, code int, err error) *Error {
	return &Error{Kind: Exit, Op: op, ExitCode: code, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ExitCode returns the exit status carried by an Exit error, or -1.
func ExitCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == Exit {
		return e.ExitCode
	}
	return -1
}
