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
				Phase:  PhaseLink,
				Kind:   KindDuplicateName,
				Path:   []string{"wippy:caps/kv@0.1.0", "get"},
				Detail: "function already defined",
			},
			contains: []string{"[link]", "duplicate_name", "wippy:caps/kv@0.1.0.get", "function already defined"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStore,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[store]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRegister,
				Kind:   KindRegistration,
				Detail: "register capability",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[register]", "registration", "register capability", "caused by", "underlying error"},
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
	err := Registration("wippy:caps/kv@0.1.0", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := DuplicateName("wippy:caps/kv@0.1.0", "get")
	target := &Error{Phase: PhaseLink, Kind: KindDuplicateName}

	if !errors.Is(err, target) {
		t.Error("errors with matching phase and kind should match")
	}

	other := &Error{Phase: PhaseLink, Kind: KindRegistration}
	if errors.Is(err, other) {
		t.Error("errors with different kind should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseCall, KindNotFound).
		Path("ns", "fn").
		Detail("export %q missing", "run").
		Cause(cause).
		Build()

	if err.Phase != PhaseCall || err.Kind != KindNotFound {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != `export "run" missing` {
		t.Fatalf("unexpected detail: %q", err.Detail)
	}
	if err.Cause != cause {
		t.Fatal("cause not set")
	}
}
