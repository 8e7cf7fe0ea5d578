package server

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}

var contentTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"json": "application/json",
	"dot":  "text/vnd.graphviz; charset=utf-8",
	"svg":  "image/svg+xml",
	"png":  "image/png",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
