package propmapper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/propmapper/i18n"
)

// ErrorDomain namespaces the error codes below.
const ErrorDomain = "propmapper"

// Code identifies a class of mapper error.
type Code int

const (
	CodeUnknownProperty     Code = 60520
	CodeInvalidMapperFormat Code = 60530
	CodeMapperDidNotFound   Code = 60540
	CodeValidationFailed    Code = 60550
)

var codeKeys = map[Code]string{
	CodeUnknownProperty:     "unknown_property",
	CodeInvalidMapperFormat: "invalid_mapper_format",
	CodeMapperDidNotFound:   "mapper_not_found",
	CodeValidationFailed:    "validation_failed",
}

// String returns the stable, untranslated key of the code.
func (c Code) String() string {
	if k, ok := codeKeys[c]; ok {
		return k
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Description returns the human-readable description of the code in the
// current i18n language.
func (c Code) Description() string { return i18n.T(c.String(), nil) }

// Error is a structural or lookup failure. These abort the call that produced
// them; no partial object or dictionary is returned alongside.
type Error struct {
	Code  Code
	Type  TypeID // type whose table was involved, when known
	Field string // field or dictionary key, when known
	Err   error  // optional underlying cause
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(ErrorDomain)
	b.WriteString(": ")
	b.WriteString(e.Code.Description())
	if e.Type != "" {
		fmt.Fprintf(b, " (type %s", e.Type)
		if e.Field != "" {
			fmt.Fprintf(b, ", field %s", e.Field)
		}
		b.WriteString(")")
	} else if e.Field != "" {
		fmt.Fprintf(b, " (field %s)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so callers can
// write errors.Is(err, propmapper.ErrMapperDidNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnknownProperty     = &Error{Code: CodeUnknownProperty}
	ErrInvalidMapperFormat = &Error{Code: CodeInvalidMapperFormat}
	ErrMapperDidNotFound   = &Error{Code: CodeMapperDidNotFound}
	ErrValidationFailed    = &Error{Code: CodeValidationFailed}
)

func invalidFormat(t TypeID, field, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidMapperFormat, Type: t, Field: field, Err: fmt.Errorf(format, args...)}
}

// Issue is a single validation failure. A field may accumulate several.
type Issue struct {
	Field     string // field name; nested fields are dotted ("address.city")
	Key       string // dictionary key the value came from or goes to
	Validator string // validator name ("minLength"), or "type"/"nested"/"transform"/"consumer"
	Value     any    // rejected value
	Message   string
	Params    map[string]any // validator parameters, e.g. {"min": 3}
	Cause     error          // optional underlying error
}

// Code always reports CodeValidationFailed.
func (Issue) Code() Code { return CodeValidationFailed }

// Issues is a collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. minLength at name
		fmt.Fprintf(b, "%s at %s", it.Validator, it.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is makes errors.Is(issues, ErrValidationFailed) hold.
func (iss Issues) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == CodeValidationFailed
}

// ByField returns the issues recorded for one field path.
func (iss Issues) ByField(field string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Field == field {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// prefixIssues namespaces nested issues under the parent field.
func prefixIssues(iss Issues, parent string) Issues {
	for i := range iss {
		if iss[i].Field == "" {
			iss[i].Field = parent
			continue
		}
		iss[i].Field = parent + "." + iss[i].Field
	}
	return iss
}
