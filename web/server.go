// Package web is the webhook transport: CORS, HMAC signature verification
// of the raw body, and routing to the worklog service.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sheetlog/config"
	"sheetlog/internal/signature"
	"sheetlog/worklog"
)

// maxBodyBytes caps webhook bodies; worklog payloads are tiny.
const maxBodyBytes = 1 << 20

// Service is the worklog orchestration consumed by the handlers. Satisfied
// by *worklog.Service.
type Service interface {
	Append(ctx context.Context, payload worklog.Payload, autoShare bool) (worklog.Result, error)
	Update(ctx context.Context, payload worklog.Payload) (worklog.Result, error)
}

type Server struct {
	service Service
	cfg     config.Config
	mux     *http.ServeMux
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewServer(service Service, cfg config.Config) http.Handler {
	server := &Server{service: service, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /worklog/append", server.handleAppend)
	mux.HandleFunc("POST /worklog/update", server.handleUpdate)
	mux.HandleFunc("/", server.handleNotFound)
	server.mux = mux

	return server
}

// ServeHTTP verifies the request envelope (method, body, signature) before
// any route-specific handling, mirroring the single entry point of the
// webhook contract.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.AllowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.AllowOrigin)
	}
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Signature")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, statusResponse{Status: "method_not_allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "read request body"})
		return
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "request body is empty"})
		return
	}

	provided := r.Header.Get("X-Signature")
	if provided == "" || !signature.Verify([]byte(s.cfg.Auth.SigningSecret), body, provided) {
		writeJSON(w, http.StatusUnauthorized, statusResponse{Status: "unauthorized"})
		return
	}

	// Handlers re-read the verified body.
	r.Body = io.NopCloser(bytes.NewReader(body))
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	result, err := s.service.Append(r.Context(), payload, s.cfg.Share.Auto)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	result, err := s.service.Update(r.Context(), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, statusResponse{Status: "not_found"})
}

// decodePayload tolerates unknown members; callers of the original service
// send extra fields alongside the worklog ones.
func decodePayload(w http.ResponseWriter, r *http.Request) (worklog.Payload, bool) {
	var payload worklog.Payload
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, &payload)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid JSON payload"})
		return worklog.Payload{}, false
	}
	return payload, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, worklog.ErrUserRequired) || errors.Is(err, worklog.ErrUserAndKeyRequired) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, statusResponse{Status: "error", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
