package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode    Phase = "decode"    // upload blob decoding
	PhaseEncode    Phase = "encode"    // record encoding
	PhaseLayout    Phase = "layout"    // layout synthesis
	PhaseAccess    Phase = "access"    // variable navigation
	PhaseRead      Phase = "read"      // controller to Go
	PhaseWrite     Phase = "write"     // Go to controller
	PhaseLoad      Phase = "load"      // catalog construction
	PhaseTransport Phase = "transport" // transport operations
	PhaseConfig    Phase = "config"    // configuration
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedRecord   Kind = "malformed_record"
	KindUnknownType       Kind = "unknown_type"
	KindLayoutMismatch    Kind = "layout_mismatch"
	KindNoSuchField       Kind = "no_such_field"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindNotIterable       Kind = "not_iterable"
	KindNotAnArray        Kind = "not_an_array"
	KindUnsupported       Kind = "unsupported"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidData       Kind = "invalid_data"
	KindTypeMismatch      Kind = "type_mismatch"
	KindFieldUnknown      Kind = "field_unknown"
	KindOverflow          Kind = "overflow"
	KindNotFound          Kind = "not_found"
	KindClosed            Kind = "closed"
	KindIO                Kind = "io"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.TypeName != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.TypeName != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", PLC type ")
			b.WriteString(e.TypeName)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("PLC type ")
			b.WriteString(e.TypeName)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the symbol path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// TypeName sets the controller data type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedRecord creates a malformed record error at a blob position
func MalformedRecord(phase Phase, position int, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedRecord,
		Detail: fmt.Sprintf("at byte %d: %s", position, detail),
		Value:  position,
		Cause:  cause,
	}
}

// UnknownType creates an unknown type error
func UnknownType(phase Phase, path []string, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownType,
		Path:     path,
		TypeName: typeName,
		Detail:   "type is neither built in nor present in the type table",
	}
}

// LayoutMismatch creates a layout mismatch error
func LayoutMismatch(typeName string, declared, computed uint32) *Error {
	return &Error{
		Phase:    PhaseLayout,
		Kind:     KindLayoutMismatch,
		TypeName: typeName,
		Detail:   fmt.Sprintf("declared size %d, computed size %d", declared, computed),
	}
}

// NoSuchField creates a missing member error
func NoSuchField(path []string, typeName, field string) *Error {
	return &Error{
		Phase:    PhaseAccess,
		Kind:     KindNoSuchField,
		Path:     path,
		TypeName: typeName,
		Detail:   fmt.Sprintf("no member %q", field),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		TypeName: typeName,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		TypeName: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
