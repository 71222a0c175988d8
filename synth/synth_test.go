package synth

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindLeaf, "leaf"},
		{KindBranch, "branch"},
		{Kind(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestInvalidfWrapsKind(t *testing.T) {
	t.Parallel()

	err := Invalidf("speed must be positive, got %v", -1.0)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Invalidf() = %v, want ErrInvalid", err)
	}

	if errors.Is(err, ErrFetch) || errors.Is(err, ErrNotFound) {
		t.Fatalf("Invalidf() matched an unrelated kind: %v", err)
	}
}

func TestMismatchErrorIsInvalid(t *testing.T) {
	t.Parallel()

	var err error = &MismatchError{Synth: "sampler"}
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("MismatchError should match ErrInvalid")
	}

	if err.Error() != "sampler: unexpected params type <nil>" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
