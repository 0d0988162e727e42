// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load workspace manifest"},
			expected: "failed to load workspace manifest",
		},
		{
			name:     "with resource",
			err:      &ActionableError{Operation: "load workspace manifest", Resource: "./slipway.toml"},
			expected: "failed to load workspace manifest: ./slipway.toml",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "publish package",
				Resource:  "harness",
				Cause:     errors.New("registry timeout"),
			},
			expected: "failed to publish package: harness: registry timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("underlying")
	err := WrapWithOperation(cause, "run audit")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWrapWithOperation_NilError(t *testing.T) {
	t.Parallel()
	if WrapWithOperation(nil, "anything") != nil {
		t.Error("expected nil for a nil cause")
	}
}

func TestFormat_Suggestions(t *testing.T) {
	t.Parallel()
	err := NewErrorContext().
		WithOperation("load workspace manifest").
		WithSuggestion("Run slipway from the workspace root").
		WithSuggestion("Use --manifest to point elsewhere").
		Build()

	out := err.Format(false)
	if !strings.Contains(out, "• Run slipway from the workspace root") {
		t.Errorf("expected first suggestion in output, got %q", out)
	}
	if !strings.Contains(out, "• Use --manifest to point elsewhere") {
		t.Errorf("expected second suggestion in output, got %q", out)
	}
}

func TestFormat_VerboseChain(t *testing.T) {
	t.Parallel()
	inner := errors.New("file not found")
	err := NewErrorContext().
		WithOperation("load workspace manifest").
		Wrap(WrapWithOperation(inner, "read file")).
		Build()

	out := err.Format(true)
	if !strings.Contains(out, "Error chain:") {
		t.Errorf("expected error chain in verbose output, got %q", out)
	}
	if !strings.Contains(out, "file not found") {
		t.Errorf("expected innermost cause in verbose output, got %q", out)
	}
}

func TestBuild_RequiresOperation(t *testing.T) {
	t.Parallel()
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("expected nil without an operation")
	}
	if NewErrorContext().WithResource("x").BuildError() != nil {
		t.Error("expected nil error without an operation")
	}
}
