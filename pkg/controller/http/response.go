package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/usecase"
	"github.com/secmon-lab/guidebook/pkg/utils/errutil"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// readJSON decodes the request body into v. Unknown fields are rejected.
func readJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "malformed request body", goerr.V("error", err.Error()))
	}
	return nil
}

// handleError maps err to a status code and a public message
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	errutil.HandleHTTP(r.Context(), w, err, status, msg)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, usecase.ErrInvalidTopic):
		return http.StatusNotFound, "unknown topic"
	case errors.Is(err, usecase.ErrGenerationExhausted):
		return http.StatusBadGateway, "could not generate a valid guide, please try again"
	case errors.Is(err, usecase.ErrSubmissionFailed):
		return http.StatusBadGateway, "video could not be submitted for processing"
	case errors.Is(err, usecase.ErrProcessingFailed):
		return http.StatusBadGateway, "video processing failed"
	case errors.Is(err, usecase.ErrPollTimeout):
		return http.StatusGatewayTimeout, "video processing is taking too long"
	case errors.Is(err, usecase.ErrVideoDisabled):
		return http.StatusServiceUnavailable, "video summarization is not available"
	case errors.Is(err, engine.ErrEngineUnavailable):
		return http.StatusServiceUnavailable, "generation service is unavailable"
	case errors.Is(err, engine.ErrEngineTimeout):
		return http.StatusGatewayTimeout, "generation service timed out"
	default:
		return http.StatusInternalServerError, ""
	}
}
