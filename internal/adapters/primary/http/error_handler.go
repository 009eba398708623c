package http

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// errorRule maps a sentinel to its HTTP rendering. An empty message means
// the sentinel's own text is shown.
type errorRule struct {
	target  error
	status  int
	code    string
	message string
}

// first match wins
var errorRules = []errorRule{
	{apperrors.ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket not found"},
	{apperrors.ErrNameRequired, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrIssueRequired, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrInvalidStatus, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrInvalidPriority, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST", "Bad request"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."},
	{apperrors.ErrCorruptStorage, http.StatusInternalServerError, "STORAGE_CORRUPT", "Stored tickets could not be read"},
}

// ErrorHandler renders errors as JSON and logs them by severity.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes the response for err.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.render(err)
	h.log(r, status, err)
	WriteJSON(w, status, body)
}

func (h *ErrorHandler) render(err error) (int, ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	}

	// field errors take precedence over the sentinels they wrap
	var fieldErrs *apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: fieldErrs.Errors,
		}
	}

	for _, rule := range errorRules {
		if !errors.Is(err, rule.target) {
			continue
		}
		msg := rule.message
		if msg == "" {
			msg = rule.target.Error()
		}
		return rule.status, ErrorResponse{Error: msg, Code: rule.code}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: "An unexpected error occurred",
		Code:  "INTERNAL_ERROR",
	}
}

func (h *ErrorHandler) log(r *http.Request, status int, err error) {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"error", err,
	}

	ctx := r.Context()
	if status >= 500 {
		h.logger.ErrorContext(ctx, "server error", attrs...)
		return
	}
	h.logger.WarnContext(ctx, "client error", attrs...)
}
