package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/store"
)

// Response envelopes. Every response body is exactly one of these.

type resourcesResponse struct {
	Resources []string `json:"resources"`
}

type todosResponse struct {
	Todos []store.Todo `json:"todos"`
}

type todoResponse struct {
	Todo store.Todo `json:"todo"`
}

type updatedResponse struct {
	ID      int64 `json:"id"`
	Updated int64 `json:"updated"`
}

type deletedResponse struct {
	ID      int64 `json:"id"`
	Deleted int64 `json:"deleted"`
}

type errorResponse struct {
	Code     int    `json:"code"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error"`
}

// send logs the outgoing status and body through the request logger, then
// writes the JSON envelope.
func send(w http.ResponseWriter, r *http.Request, status int, payload any) {
	log := logger.FromContext(r.Context())

	data, err := encodeJSON(payload)
	if err != nil {
		log.Error("encode response:", err)
		status = http.StatusInternalServerError
		data, _ = encodeJSON(errorResponse{Code: status, Error: err.Error()})
	}

	log.Log(fmt.Sprintf("%d %s", status, data))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Error("write response:", err)
	}
}

// encodeJSON marshals v compactly without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
