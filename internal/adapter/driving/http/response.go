package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeResult passes upstream payloads through byte for byte. Problems are
// reported as 422 with their {error, message} body.
func writeResult(w http.ResponseWriter, res model.Result) {
	status := http.StatusOK
	if res.Problem != nil {
		status = http.StatusUnprocessableEntity
	}
	writeRaw(w, status, res.JSON())
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// UpstreamErrorResponse is returned when the Pluxee API call failed.
type UpstreamErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// LoginResponse is the JSON representation of a completed login.
type LoginResponse struct {
	Status           string `json:"status"`
	TokenSource      string `json:"token_source"`
	TokenFingerprint string `json:"token_fingerprint"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
