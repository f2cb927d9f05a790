// Package response holds the JSON envelope shared by every handler.
//
// Successful responses look like {"success": true, "data": ...}; list responses
// add a "count". Errors go through apperror.WriteError and look like
// {"success": false, "error": "..."}.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/logger"
)

// maxBodyBytes caps request bodies; habit payloads are tiny.
const maxBodyBytes = 1 << 20

// Envelope is the success wrapper.
type Envelope struct {
	Success bool        `json:"success" example:"true"`
	Count   *int        `json:"count,omitempty" example:"2"`
	Data    interface{} `json:"data"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// Data writes {"success": true, "data": data}.
func Data(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes {"success": true, "count": n, "data": items}.
func List(w http.ResponseWriter, items interface{}, n int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &n, Data: items})
}

// Empty writes {"success": true, "data": {}}.
func Empty(w http.ResponseWriter) {
	Data(w, http.StatusOK, struct{}{})
}

// Decode reads a JSON body into dst. Fields dst does not declare are ignored,
// so clients may send back a whole habit when editing it. Malformed, trailing
// or oversized bodies are rejected as a BadRequestError.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return apperror.NewBadRequestError("request body is empty", err)
		}
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}
	if dec.More() {
		return apperror.NewBadRequestError("request body must contain a single JSON object", nil)
	}
	return nil
}
