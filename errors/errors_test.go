package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseWrite,
				Kind:     KindTypeMismatch,
				Path:     []string{"MAIN", "axis", "pos"},
				GoType:   "string",
				TypeName: "LREAL",
				Detail:   "cannot convert",
			},
			contains: []string{"[write]", "type_mismatch", "MAIN.axis.pos", "string", "LREAL", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[access]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTransport,
				Kind:   KindInvalidData,
				Detail: "short reply",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[transport]", "invalid_data", "short reply", "caused by", "underlying error"},
		},
		{
			name:     "type name only",
			err:      UnknownType(PhaseRead, []string{"GVL", "x"}, "ST_Missing"),
			contains: []string{"[read]", "unknown_type", "GVL.x", "PLC type ST_Missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindMalformedRecord,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseAccess,
		Kind:  KindNoSuchField,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindNoSuchField}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseRead, Kind: KindNoSuchField}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseAccess, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseAccess, Kind: KindNoSuchField}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestIsKind(t *testing.T) {
	inner := UnknownType(PhaseLayout, nil, "FB_Foo")
	outer := Wrap(PhaseLoad, KindInvalidData, inner, "build catalog")
	wrapped := fmt.Errorf("load: %w", outer)

	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{"direct", inner, KindUnknownType, true},
		{"outer kind", wrapped, KindInvalidData, true},
		{"cause kind", wrapped, KindUnknownType, true},
		{"absent", wrapped, KindOutOfBounds, false},
		{"plain error", errors.New("x"), KindUnknownType, false},
		{"nil", nil, KindUnknownType, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseWrite, KindTypeMismatch).
		Path("MAIN", "name").
		GoType("string").
		TypeName("DINT").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "integer", "string").
		Build()

	if err.Phase != PhaseWrite {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseWrite)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "MAIN" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [MAIN name]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.TypeName != "DINT" {
		t.Errorf("TypeName = %v, want 'DINT'", err.TypeName)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected integer, got string" {
		t.Errorf("Detail = %v, want 'expected integer, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("MalformedRecord", func(t *testing.T) {
		err := MalformedRecord(PhaseDecode, 84, "zero length", nil)
		if err.Kind != KindMalformedRecord {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedRecord)
		}
		if err.Value != 84 || !strings.Contains(err.Detail, "84") {
			t.Errorf("Value=%v Detail=%q", err.Value, err.Detail)
		}
	})

	t.Run("LayoutMismatch", func(t *testing.T) {
		err := LayoutMismatch("ST_Packed", 5, 8)
		if err.Kind != KindLayoutMismatch || err.Phase != PhaseLayout {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "5") || !strings.Contains(err.Detail, "8") {
			t.Errorf("Detail = %q, should contain both sizes", err.Detail)
		}
	})

	t.Run("NoSuchField", func(t *testing.T) {
		err := NoSuchField([]string{"MAIN", "st"}, "ST_Foo", "bar")
		if err.Kind != KindNoSuchField {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNoSuchField)
		}
		if err.TypeName != "ST_Foo" {
			t.Errorf("TypeName = %v", err.TypeName)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseWrite, []string{"field"}, "int", "STRING(80)")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" || err.TypeName != "STRING(80)" {
			t.Errorf("GoType=%v TypeName=%v", err.GoType, err.TypeName)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseAccess, "array of anonymous structure")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseAccess, []string{"arr"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseWrite, []string{"val"}, 300, "USINT")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("FieldUnknown", func(t *testing.T) {
		err := FieldUnknown(PhaseWrite, []string{"record"}, "extra")
		if err.Kind != KindFieldUnknown {
			t.Errorf("Kind = %v, want %v", err.Kind, KindFieldUnknown)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseAccess, "symbol", "MAIN.x")
		if err.Kind != KindNotFound || !strings.Contains(err.Detail, "MAIN.x") {
			t.Errorf("got %v", err)
		}
	})
}
