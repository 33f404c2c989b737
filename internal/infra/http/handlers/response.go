package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return false
	}
	return true
}

func statusForCode(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeUnauthorized:
		return http.StatusUnauthorized
	case usecase.CodeLocked:
		return http.StatusLocked
	case usecase.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps use case errors to HTTP. Technical details are logged and
// never returned to the client.
func respondError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, statusForCode(de.Code), errorResponse{Code: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	code := "INTERNAL"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("code", code),
		zap.Error(err),
	)
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
