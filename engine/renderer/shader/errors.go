package shader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a pre-processing failure.
type ErrorKind int

const (
	// ErrorKindSyntax is a #! line matching neither directive grammar.
	ErrorKindSyntax ErrorKind = iota + 1

	// ErrorKindStructural covers redeclarations, missing sections, misplaced directives and empty use paths.
	ErrorKindStructural

	// ErrorKindResolution covers self-use and unreadable entry or used files.
	ErrorKindResolution

	// ErrorKindUnrecognized is a well-formed directive with an unknown name.
	ErrorKindUnrecognized
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrSyntax       = errors.New("shader: syntax error")
	ErrStructural   = errors.New("shader: structural error")
	ErrResolution   = errors.New("shader: resolution error")
	ErrUnrecognized = errors.New("shader: unrecognized directive")
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindSyntax:
		return "syntax"
	case ErrorKindStructural:
		return "structural"
	case ErrorKindResolution:
		return "resolution"
	case ErrorKindUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorKindSyntax:
		return ErrSyntax
	case ErrorKindStructural:
		return ErrStructural
	case ErrorKindResolution:
		return ErrResolution
	case ErrorKindUnrecognized:
		return ErrUnrecognized
	}
	return nil
}

// Error is a terminal pre-processing failure. It records where the failure happened and, for
// failures inside used files, the nested cause raised by the used file.
type Error struct {
	// Kind classifies the failure. A wrapper around a nested failure carries the nested kind.
	Kind ErrorKind

	// File is the display name of the file being parsed.
	File string

	// Line is the 1-based line number within File, 0 when the failure is not tied to a line.
	Line int

	// Text is the raw text of the offending line.
	Text string

	// Reason describes the failure.
	Reason string

	// Err is the nested cause, if any.
	Err error

	// Path is the canonical path of the file that could not be read, for unreadable entry and
	// used files. Empty otherwise.
	Path string

	scope errorScope
}

// errorScope selects the message layout of an Error.
type errorScope int

const (
	// scopeEntry is a failure while scanning the entry file's top level.
	scopeEntry errorScope = iota

	// scopeBlock is a failure while expanding a stage body or a used file.
	scopeBlock

	// scopeIncomplete is a required section missing after the scan.
	scopeIncomplete

	// scopeOpen is an unreadable entry file.
	scopeOpen
)

func (e *Error) Error() string {
	var sb strings.Builder
	switch e.scope {
	case scopeIncomplete:
		fmt.Fprintf(&sb, "incomplete shader %s: %s.", e.File, e.Reason)
	case scopeOpen:
		fmt.Fprintf(&sb, "failed to open shader file %s: %s.", e.File, e.Reason)
	case scopeBlock:
		fmt.Fprintf(&sb, "failed to parse shader block, in %s, at line %d: \"%s\" error: %s.", e.File, e.Line, e.Text, e.Reason)
	default:
		fmt.Fprintf(&sb, "failed to parse shader %s, at line %d: \"%s\" error: %s.", e.File, e.Line, e.Text, e.Reason)
	}
	if e.Err != nil {
		sb.WriteString("\n  caused by: ")
		sb.WriteString(strings.ReplaceAll(e.Err.Error(), "\n", "\n  "))
	}
	return sb.String()
}

// Unwrap returns the nested cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// Root returns the innermost *Error in the chain, which is the failure that started the unwind.
func (e *Error) Root() *Error {
	root := e
	for {
		var next *Error
		if root.Err == nil || !errors.As(root.Err, &next) {
			return root
		}
		root = next
	}
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0 when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// lineError is raised inside the scan loops and given file and line context by the caller.
type lineError struct {
	kind   ErrorKind
	reason string
	cause  error
	path   string
}

func (e *lineError) Error() string {
	return e.reason
}

func syntaxError() *lineError {
	return &lineError{kind: ErrorKindSyntax, reason: "macro syntax error"}
}

func structuralError(format string, args ...any) *lineError {
	return &lineError{kind: ErrorKindStructural, reason: fmt.Sprintf(format, args...)}
}

func resolutionError(cause error, format string, args ...any) *lineError {
	return &lineError{kind: ErrorKindResolution, reason: fmt.Sprintf(format, args...), cause: cause}
}

func unrecognizedError(name DirectiveName) *lineError {
	return &lineError{kind: ErrorKindUnrecognized, reason: fmt.Sprintf("unrecognized macro %s", name)}
}
