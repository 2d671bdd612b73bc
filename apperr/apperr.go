// Package apperr defines the error kinds reported by the migrator and the
// reverter, each with its own process exit status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal failure.
type Kind int

const (
	// NoInputFiles: no usable .strings/.stringsdict file under the given paths.
	NoInputFiles Kind = iota + 1
	// CatalogNotFound: the catalog path is missing or lacks the .xcstrings extension.
	CatalogNotFound
	// CatalogCorrupt: the catalog exists but does not decode.
	CatalogCorrupt
	// ExportCatalog: writing a .xcstrings file failed.
	ExportCatalog
	// ExportStrings: writing a .strings file failed.
	ExportStrings
	// ExportStringsDict: writing a .stringsdict file failed.
	ExportStringsDict
)

// ExitUsage is returned by ExitCode for errors that carry no Kind
// (bad flags, unreadable configuration).
const ExitUsage = 64

var messages = map[Kind]string{
	NoInputFiles:      "strings files not found.",
	CatalogNotFound:   "xcstrings file not found.",
	CatalogCorrupt:    "xcstrings file is broken.",
	ExportCatalog:     "failed to export xcstrings file.",
	ExportStrings:     "failed to export strings file.",
	ExportStringsDict: "failed to export stringsdict file.",
}

// Message is the one-line diagnostic for the kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// ExitCode is the process exit status for the kind.
func (k Kind) ExitCode() int { return int(k) }

// Error implements error so that a bare Kind can be used as a sentinel
// with errors.Is.
func (k Kind) Error() string { return k.Message() }

// Error is a failure of a given kind, optionally tied to a path and a cause.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// New wraps err as a failure of kind k for path.
func New(k Kind, path string, err error) *Error {
	return &Error{Kind: k, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Message()
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is e's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first *Error or Kind found in err's tree.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return 0, false
}

// ExitCode maps err to a process exit status: 0 for nil, the kind's code
// for classified failures, ExitUsage otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if k, ok := KindOf(err); ok {
		return k.ExitCode()
	}
	return ExitUsage
}
