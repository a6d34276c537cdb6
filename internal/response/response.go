package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response. Payload fields are inlined
// next to success so clients read `policy`, `activity` and so on directly.
type Envelope map[string]interface{}

type ErrorBody struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSON writes {success: true} merged with payload.
func JSON(w http.ResponseWriter, status int, payload Envelope) {
	body := Envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func Error(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg})
}

// ErrorCode writes an error carrying a machine-readable code.
func ErrorCode(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	writeJSON(w, status, ErrorBody{Error: msg, Code: code, Details: details})
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
