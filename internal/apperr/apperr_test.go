package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("name", "name is required"), KindValidation},
		{"not found", NotFound("supplier not found"), KindNotFound},
		{"conflict", Conflict("prev_updated_at", "stale"), KindConflict},
		{"internal", Internal(errors.New("boom")), KindInternal},
		{"wrapped", fmt.Errorf("listing: %w", NotFound("gone")), KindNotFound},
		{"uncategorized", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs_WrapsUncategorized(t *testing.T) {
	cause := errors.New("driver exploded")
	appErr := As(cause)

	if appErr.Kind != KindInternal {
		t.Errorf("Kind = %v, want internal", appErr.Kind)
	}
	if appErr.Message != "internal error" {
		t.Errorf("Message = %q, client-facing message must stay generic", appErr.Message)
	}
	if !errors.Is(appErr, cause) {
		t.Error("cause must remain reachable for logging")
	}
}

func TestErrorString(t *testing.T) {
	withField := Validation("code", "code is required")
	if withField.Error() != "ValidationError: code is required (field code)" {
		t.Errorf("Error() = %q", withField.Error())
	}

	withoutField := NotFound("template not found")
	if withoutField.Error() != "NotFound: template not found" {
		t.Errorf("Error() = %q", withoutField.Error())
	}
}
