package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("apply stress: %w", WithMetadata(CodeNotFound, "stress type not found", map[string]string{"ID": "st-1"}))

	if !stderrors.Is(err, New(CodeNotFound, "other message")) {
		t.Fatal("expected wrapped error to match by code")
	}
	if stderrors.Is(err, New(CodeAlreadyExists, "stress type not found")) {
		t.Fatal("expected different code not to match")
	}
}

func TestCodeAndMetadataOf(t *testing.T) {
	cause := stderrors.New("disk full")
	err := fmt.Errorf("outer: %w", WrapWithMetadata(CodeUndoDisallowed, "bad table", map[string]string{"Table": "campaigns"}, cause))

	if got := CodeOf(err); got != CodeUndoDisallowed {
		t.Fatalf("CodeOf = %q, want %q", got, CodeUndoDisallowed)
	}
	if got := MetadataOf(err)["Table"]; got != "campaigns" {
		t.Fatalf("MetadataOf Table = %q, want campaigns", got)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to stay reachable")
	}

	plain := stderrors.New("plain")
	if got := CodeOf(plain); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %q, want %q", got, CodeUnknown)
	}
	if MetadataOf(plain) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeDieSizeInvalid, true},
		{CodeNotFound, true},
		{CodePermissionDenied, true},
		{CodeUndoDisallowed, false},
		{CodeUnknown, false},
	}
	for _, tc := range tests {
		if got := tc.code.Recoverable(); got != tc.want {
			t.Errorf("%s.Recoverable() = %v, want %v", tc.code, got, tc.want)
		}
	}
}
