package errors

import (
	"errors"
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
				Phase:  PhaseAccess,
				Kind:   KindOutOfBounds,
				Path:   []string{"scenarios", "ops"},
				Type:   "[]byte",
				Detail: "index 10 out of bounds (length 5)",
			},
			contains: []string{"[access]", "out_of_bounds", "scenarios.ops", "[]byte", "index 10"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRelease,
				Kind:  KindDoubleRelease,
			},
			contains: []string{"[release]", "double_release"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindAllocation,
				Detail: "arena full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[alloc]", "allocation", "arena full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseAlloc,
		Kind:  KindAllocation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseAccess,
		Kind:  KindUseAfterRelease,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindUseAfterRelease}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseRelease, Kind: KindUseAfterRelease}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseAccess, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseAccess, Kind: KindUseAfterRelease}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRegistry, KindNotFound).
		Path("table", "slots").
		Type("*Conn").
		Value(42).
		Cause(cause).
		Detail("handle %d is stale (generation %d)", 42, 3).
		Build()

	if err.Phase != PhaseRegistry {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegistry)
	}
	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
	if len(err.Path) != 2 || err.Path[0] != "table" || err.Path[1] != "slots" {
		t.Errorf("Path = %v, want [table slots]", err.Path)
	}
	if err.Type != "*Conn" {
		t.Errorf("Type = %v, want '*Conn'", err.Type)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "handle 42 is stale (generation 3)" {
		t.Errorf("Detail = %v, want 'handle 42 is stale (generation 3)'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UseAfterRelease", func(t *testing.T) {
		err := UseAfterRelease(PhaseAccess, "*Conn")
		if err.Kind != KindUseAfterRelease {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUseAfterRelease)
		}
		if err.Type != "*Conn" {
			t.Errorf("Type = %v, want '*Conn'", err.Type)
		}
	})

	t.Run("DoubleRelease", func(t *testing.T) {
		err := DoubleRelease(PhaseRelease, "*Conn")
		if err.Kind != KindDoubleRelease {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDoubleRelease)
		}
	})

	t.Run("CorruptCount", func(t *testing.T) {
		err := CorruptCount(PhaseRelease, "strong", -1)
		if err.Kind != KindCorruptCount {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCorruptCount)
		}
		if !containsSubstring(err.Detail, "strong") {
			t.Errorf("Detail = %v, should name the counter", err.Detail)
		}
		if err.Value != int64(-1) {
			t.Errorf("Value = %v, want -1", err.Value)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseAccess, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseAccess, "int32", 1<<40)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 1<<40 {
			t.Errorf("Value = %v, want 1<<40", err.Value)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		cause := errors.New("mmap failed")
		err := AllocationFailed(PhaseAlloc, 1024, cause)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !containsSubstring(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
		if !errors.Is(err, err) || err.Cause != cause {
			t.Errorf("Cause = %v, want %v", err.Cause, cause)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		err := Expired(PhasePromote, "*Conn")
		if err.Kind != KindExpired {
			t.Errorf("Kind = %v, want %v", err.Kind, KindExpired)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseRegistry, "handle", 7)
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if err.Value != 7 {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		err := Closed(PhaseRegistry, "table")
		if err.Kind != KindClosed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindClosed)
		}
		if !containsSubstring(err.Detail, "table") {
			t.Errorf("Detail = %v, should name the container", err.Detail)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseAlloc, "refkit.Allocator")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
		if err.Type != "refkit.Allocator" {
			t.Errorf("Type = %v, want 'refkit.Allocator'", err.Type)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseConfig, "workers must be positive")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("yaml: bad document")
		err := Wrap(PhaseConfig, KindInvalidInput, cause, "load scenario")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
		if !errors.Is(errors.Unwrap(err), cause) {
			t.Error("wrapped cause should unwrap")
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
