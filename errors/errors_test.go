package errors

import (
	"errors"
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
				Phase:    PhaseEncode,
				Kind:     KindTypeMismatch,
				Path:     []string{"pkg/Point", "x"},
				GoType:   "string",
				HostType: "I",
				Detail:   "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "pkg/Point.x", "string", "I", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCall,
				Kind:   KindAllocation,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[call]", "allocation", "heap full", "caused by", "underlying error"},
		},
		{
			name: "host type only",
			err: &Error{
				Phase:    PhaseResolve,
				Kind:     KindNotFound,
				HostType: "(II)V",
			},
			contains: []string{"[resolve]", "not_found", "host type (II)V"},
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
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
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
		Phase: PhaseResolve,
		Kind:  KindNotFound,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseResolve, Kind: KindNotFound}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCall, Kind: KindNotFound}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseResolve, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseResolve, Kind: KindNotFound}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("pkg/Point", "x").
		GoType("string").
		HostType("I").
		HostClass("java/lang/IllegalArgumentException").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "int32", "string").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "pkg/Point" || err.Path[1] != "x" {
		t.Errorf("Path = %v, want [pkg/Point x]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.HostType != "I" {
		t.Errorf("HostType = %v, want 'I'", err.HostType)
	}
	if err.HostException() != "java/lang/IllegalArgumentException" {
		t.Errorf("HostException = %v", err.HostException())
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected int32, got string" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseEncode, []string{"field"}, "int", "Ljava/lang/String;")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" || err.HostType != "Ljava/lang/String;" {
			t.Errorf("GoType=%v HostType=%v", err.GoType, err.HostType)
		}
	})

	t.Run("Unresolved", func(t *testing.T) {
		err := Unresolved("method", "offset", "(II)V", "java/lang/NoSuchMethodError", nil)
		if err.Kind != KindNotFound || err.Phase != PhaseResolve {
			t.Errorf("Phase/Kind = %v/%v", err.Phase, err.Kind)
		}
		if err.HostException() != "java/lang/NoSuchMethodError" {
			t.Errorf("HostException = %v", err.HostException())
		}
		if !strings.Contains(err.Error(), "(II)V") {
			t.Errorf("Error() = %q should mention descriptor", err.Error())
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseArray, []string{"array"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
		if err.HostException() != "java/lang/ArrayIndexOutOfBoundsException" {
			t.Errorf("HostException = %v", err.HostException())
		}
	})

	t.Run("NullReference", func(t *testing.T) {
		err := NullReference(PhaseCall, []string{"recv"}, "Lpkg/Point;")
		if err.Kind != KindNullReference {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNullReference)
		}
		if err.HostException() != "java/lang/NullPointerException" {
			t.Errorf("HostException = %v", err.HostException())
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "B")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseArray, "int array", 1024)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
		if err.HostException() != "java/lang/OutOfMemoryError" {
			t.Errorf("HostException = %v", err.HostException())
		}
	})

	t.Run("Registration", func(t *testing.T) {
		cause := errors.New("no such method")
		err := Registration("pkg/Main", "plus", cause)
		if err.Kind != KindRegistration {
			t.Errorf("Kind = %v, want %v", err.Kind, KindRegistration)
		}
		if !errors.Is(err, cause) {
			t.Error("Registration should wrap cause")
		}
	})

	t.Run("ReferenceMisuse", func(t *testing.T) {
		err := ReferenceMisuse("local reference released twice")
		if err.Phase != PhaseReference || err.Kind != KindReferenceMisuse {
			t.Errorf("Phase/Kind = %v/%v", err.Phase, err.Kind)
		}
	})
}
