package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/service"
)

type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapServiceError maps service errors to HTTP error responses.
func MapServiceError(err error) ErrorResponse {
	var svcErr *domain.AnalysisServiceError
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "EMPTY_INPUT",
			Message:    domain.ErrEmptyInput.Error(),
		}
	case errors.As(err, &svcErr):
		return ErrorResponse{
			StatusCode: http.StatusBadGateway,
			Code:       "ANALYSIS_FAILED",
			Message:    svcErr.Error(),
		}
	case errors.Is(err, domain.ErrNoResults):
		return ErrorResponse{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       "NO_RESULTS",
			Message:    domain.ErrNoResults.Error(),
		}
	case errors.Is(err, export.ErrUnknownFormat):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_FORMAT",
			Message:    err.Error(),
		}
	case errors.Is(err, domain.ErrNotFound):
		return ErrorResponse{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    "run not found",
		}
	case errors.Is(err, service.ErrHistoryDisabled):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "HISTORY_DISABLED",
			Message:    service.ErrHistoryDisabled.Error(),
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

func handleServiceError(c *gin.Context, err error) {
	errResp := MapServiceError(err)
	var svcErr *domain.AnalysisServiceError
	switch {
	case errors.As(err, &svcErr):
		slog.Error("analysis failed", "request_id", c.GetString(requestIDKey), "detail", svcErr.Detail())
	case errResp.StatusCode >= http.StatusInternalServerError:
		slog.Error("request failed", "request_id", c.GetString(requestIDKey), "err", err)
	}
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

func handleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}
