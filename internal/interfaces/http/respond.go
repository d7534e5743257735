package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
)

// errMalformedBody rejects bodies that fail JSON binding
var errMalformedBody = apperr.Validation("", "malformed request body")

func errMissingField(field string) error {
	return apperr.Validation(field, field+" is required")
}

// ErrorResponse is the wire shape of every failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindInternal:   http.StatusInternalServerError,
}

// respondError maps an application error to its status code and wire
// shape. Internal causes are logged, never sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperr.As(err)

	status, ok := kindStatus[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if appErr.Kind == apperr.KindInternal {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}

	c.JSON(status, ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("id", "id must be an integer")
	}
	return id, nil
}

// parseDate parses a calendar date in 2006-01-02 form
func parseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be a date in YYYY-MM-DD form")
	}
	return parsed.UTC(), nil
}

// parseTimestamp parses an RFC3339 timestamp, as serialized in
// updated_at fields
func parseTimestamp(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperr.Validation(field, field+" is required")
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be an RFC3339 timestamp")
	}
	return parsed, nil
}
