package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/partline/marketplace/internal/logger"
	"github.com/partline/marketplace/internal/service"
	"go.uber.org/zap"
)

// Success responses wrap the payload in a data envelope, errors carry the
// guard code and a human-readable message.
type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Error("encode response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, dataEnvelope{Data: payload})
}

func writeError(w http.ResponseWriter, err error) {
	svcErr, ok := service.AsError(err)
	if !ok {
		logger.Log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Status:  string(service.CodeInternal),
			Message: "internal server error",
		})
		return
	}

	writeJSON(w, statusCodeFor(svcErr.Code), errorEnvelope{
		Status:  string(svcErr.Code),
		Message: svcErr.Message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Status:  string(service.CodeBadRequest),
		Message: message,
	})
}

func statusCodeFor(code service.ErrorCode) int {
	switch code {
	case service.CodeBadRequest:
		return http.StatusBadRequest
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
