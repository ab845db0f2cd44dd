package api

import (
	"encoding/json"
	"net/http"
	"time"

	"tidewater/harbormaster/internal/models/dtos/responses"
)

// RespondWithSuccess writes the standard success envelope.
func RespondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondWithError writes the standard error envelope. The reason code is
// machine-readable; the message is for humans.
func RespondWithError(w http.ResponseWriter, statusCode int, message string, reason string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
		Reason:    reason,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}
