package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/sentiwatch/internal/models"
)

const (
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeEmptyMessage     = "EMPTY_MESSAGE"
	CodeInvalidMethod    = "INVALID_METHOD"
	CodeInvalidSentiment = "INVALID_SENTIMENT"
	CodeInvalidID        = "INVALID_ID"
	CodeAnalysisError    = "ANALYSIS_ERROR"
	CodeRetrievalError   = "RETRIEVAL_ERROR"
	CodeTicketNotFound   = "TICKET_NOT_FOUND"
)

// apiError is returned by handlers and rendered by ErrorHandlingMiddleware as
// {"error": message, "code": code}.
type apiError struct {
	status  int
	code    string
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *apiError) Unwrap() error {
	return e.cause
}

func badRequest(code, message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: code, message: message}
}

func notFound(code, message string) *apiError {
	return &apiError{status: http.StatusNotFound, code: code, message: message}
}

func internalError(code, message string, cause error) *apiError {
	return &apiError{status: http.StatusInternalServerError, code: code, message: message, cause: cause}
}

// ErrorHandlingMiddleware renders handler errors as JSON error bodies. echo's own
// HTTP errors pass through untouched.
func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			var apiErr *apiError
			if !errors.As(err, &apiErr) {
				apiErr = internalError(CodeAnalysisError, "internal server error", err)
			}
			logError(c, apiErr)

			if err := c.JSON(apiErr.status, models.ErrorResponse{Error: apiErr.message, Code: apiErr.code}); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apiError) {
	attrs := []any{
		slog.String("code", err.code),
		slog.String("message", err.message),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
		slog.Int("status", err.status),
	}

	if err.status >= http.StatusInternalServerError {
		if err.cause != nil {
			attrs = append(attrs, slog.String("cause", err.cause.Error()))
		}
		slog.Error("[Server] Request failed", attrs...)
		return
	}
	slog.Info("[Server] Request rejected", attrs...)
}
