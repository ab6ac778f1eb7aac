package common

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       constants.APIStatusOk,
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. errCode carries
// the machine-readable taxonomy tag (AlreadyMember, NotFound, ...).
func RespondError(w http.ResponseWriter, initTime time.Time, errCode string, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       constants.APIStatusError,
		Message:      message,
		ErrorCode:    errCode,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondPartial reports a partial success: the primary mutation stood
// but a follow-up step failed and should be retried on its own.
func RespondPartial(w http.ResponseWriter, initTime time.Time, errCode string, message string, data any) {
	response := dtos.APIResponse{
		Status:       constants.APIStatusError,
		Message:      message,
		ErrorCode:    errCode,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}
	writeJSON(w, http.StatusOK, response)
}

func GetResponseTime(init time.Time) string {
	return time.Since(init).Round(time.Millisecond).String()
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("JSON encode failed: %v", err)
	}
}
