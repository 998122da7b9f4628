package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, error code
// and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto an HTTP response. Domain errors
// carry their kind; anything else is an unclassified internal failure and the
// client only ever sees a generic message.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var derr *model.DomainError
	if errors.As(err, &derr) {
		status := statusForKind(derr.Kind)
		if derr.Kind == model.KindInvariant {
			// A consistency defect, not a client error.
			logger.Error().Str("code", derr.Code).Str("error", derr.Message).Msg("invariant violation")
		} else {
			logger.Debug().Str("code", derr.Code).Int("status", status).Msg("domain error")
		}
		writeJSON(w, status, model.ErrorResponse{Error: derr.Code, Message: derr.Message})
		return
	}

	logger.Error().Err(err).Msg("unclassified handler error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

// statusForKind maps a domain error kind onto an HTTP status code.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// pathID parses a UUID path segment, writing a 400 response on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFormat, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
