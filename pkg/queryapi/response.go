package queryapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rocketmq-go/namesrv/internal/logger"
)

// response is the standard envelope for every JSON reply this API sends,
// adapted from the teacher's controlplane API response wrapper.
type response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// writeJSON encodes to a buffer first so an encoding failure can still
// produce an error response instead of a half-written body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func okResponse(data interface{}) response {
	return response{Status: "ok", Timestamp: time.Now().UTC(), Data: data}
}

func errorResponse(errMsg string) response {
	return response{Status: "error", Timestamp: time.Now().UTC(), Error: errMsg}
}
