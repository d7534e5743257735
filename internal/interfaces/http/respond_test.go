package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func recordError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)

	respondError(c, zap.NewNop(), err)

	var body ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return recorder, body
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "validation",
			err:        apperr.Validation("status", "unknown status foo"),
			wantStatus: http.StatusBadRequest,
			wantError:  "ValidationError",
			wantField:  "status",
		},
		{
			name:       "not found",
			err:        apperr.NotFound("template not found"),
			wantStatus: http.StatusNotFound,
			wantError:  "NotFound",
		},
		{
			name:       "conflict",
			err:        apperr.Conflict("prev_updated_at", "template was modified by another request"),
			wantStatus: http.StatusConflict,
			wantError:  "Conflict",
			wantField:  "prev_updated_at",
		},
		{
			name:       "uncategorized",
			err:        errors.New("driver exploded"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "InternalError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, body := recordError(t, tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if body.Field != tt.wantField {
				t.Errorf("field = %q, want %q", body.Field, tt.wantField)
			}
		})
	}
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	_, body := recordError(t, errors.New("password=hunter2 rejected"))

	if body.Message != "internal error" {
		t.Errorf("message = %q, internal causes must not leak", body.Message)
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("due_date", "2026-03-01")
	if err != nil {
		t.Fatalf("parseDate() error = %v", err)
	}
	if parsed.Hour() != 0 || parsed.Location() != parsed.UTC().Location() {
		t.Errorf("parseDate() = %v, want midnight UTC", parsed)
	}

	if _, err := parseDate("due_date", "03/01/2026"); !apperr.IsValidation(err) {
		t.Errorf("parseDate() error = %v, want ValidationError", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	if _, err := parseTimestamp("prev_updated_at", ""); !apperr.IsValidation(err) {
		t.Errorf("empty timestamp error = %v, want ValidationError", err)
	}

	parsed, err := parseTimestamp("prev_updated_at", "2026-03-01T09:30:00.123456789Z")
	if err != nil {
		t.Fatalf("parseTimestamp() error = %v", err)
	}
	if parsed.Nanosecond() != 123456789 {
		t.Error("timestamp precision lost; optimistic-lock comparisons need it intact")
	}
}
