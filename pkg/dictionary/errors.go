package dictionary

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind classifies dictionary errors
type ErrorKind int

const (
	// MissingEntry: a mandatory lookup found nothing
	MissingEntry ErrorKind = iota + 1
	// MalformedEntry: an entry value had no tokens, left tokens unread, or could not be built
	MalformedEntry
	// InvalidInput: a value could not be converted to the requested type
	InvalidInput
	// DuplicateKey: an entry was added under a key that already exists
	DuplicateKey
	// SelfOperation: a dictionary was merged, appended or assigned into itself
	SelfOperation
	// Syntax: the text could not be tokenized or does not follow the grammar
	Syntax
)

func (k ErrorKind) String() string {
	switch k {
	case MissingEntry:
		return "missing entry"
	case MalformedEntry:
		return "malformed entry"
	case InvalidInput:
		return "invalid input"
	case DuplicateKey:
		return "duplicate entry"
	case SelfOperation:
		return "operation on self"
	case Syntax:
		return "syntax error"
	default:
		return "dictionary error"
	}
}

// Error is the error type returned by dictionary operations. Dict is the
// dot-separated name of the dictionary involved; Line is 1-based, 0 when unknown.
type Error struct {
	Kind      ErrorKind
	Dict      string
	Keyword   string
	Line      int
	Remaining int
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Keyword != "" {
		fmt.Fprintf(&b, " %q", e.Keyword)
	}
	if e.Dict != "" {
		fmt.Fprintf(&b, " in dictionary %q", e.Dict)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Remaining > 0 {
		fmt.Fprintf(&b, " (%d unused tokens)", e.Remaining)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Dict == "" && t.Keyword == "" && t.Msg == "" && t.Err == nil
}

// Sentinels for errors.Is
var (
	ErrMissingEntry   = &Error{Kind: MissingEntry}
	ErrMalformedEntry = &Error{Kind: MalformedEntry}
	ErrInvalidInput   = &Error{Kind: InvalidInput}
	ErrDuplicateKey   = &Error{Kind: DuplicateKey}
	ErrSelfOperation  = &Error{Kind: SelfOperation}
	ErrSyntax         = &Error{Kind: Syntax}
)

// IsKind reports whether err is, or wraps, an *Error of kind k
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Must returns v or panics with err. It pairs with Recover for callers that
// prefer abort semantics over error checking.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Recover converts a panic carrying an *Error into a returned error. Use it
// deferred: defer dictionary.Recover(&err).
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		var de *Error
		if errors.As(e, &de) {
			*errp = e
			return
		}
	}
	panic(r)
}
