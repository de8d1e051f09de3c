// Package api exposes the HTTP surface the chat widget talks to.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/praxkit/praxis-chat/chat"
)

const (
	// MissingSlugText is returned when no tenant slug can be resolved from
	// the request body or the Referer header.
	MissingSlugText = "Technischer Fehler: Kein Mandanten-Slug vorhanden."

	// BackendErrorText replaces any dependency failure. Raw error strings
	// never reach the widget; details go to the server log only.
	BackendErrorText = "Entschuldigung, es ist gerade ein technisches Problem aufgetreten. Bitte kontaktieren Sie die Praxis direkt."
)

// Answerer runs one question through the response pipeline.
type Answerer interface {
	Answer(ctx context.Context, slug, message string) (chat.Reply, error)
}

// Server holds the collaborators it serves with. They are constructed once in
// main and injected here, so tests can swap in doubles.
type Server struct {
	answerer Answerer
	logger   *log.Logger
	handler  http.Handler
}

type askRequest struct {
	Slug    string `json:"slug"`
	Message string `json:"message"`
}

type askResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func New(answerer Answerer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{answerer: answerer, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/ask", s.handleAsk)
	return withCORS(mux)
}

// withCORS allows the widget iframe to call the API cross-origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	// Some embeds post an empty body; treat it as an empty request rather
	// than a decode failure, the validation below reports what is missing.
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Message == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message required"})
		return
	}

	slug := resolveSlug(req.Slug, r.Header.Get("Referer"))
	if slug == "" {
		s.logger.Printf("ask without resolvable tenant slug (referer %q)", r.Header.Get("Referer"))
		s.writeJSON(w, http.StatusInternalServerError, askResponse{Text: MissingSlugText})
		return
	}

	reply, err := s.answerer.Answer(r.Context(), slug, req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message required"})
		return
	}
	if err != nil {
		s.logger.Printf("answer failed for tenant %q: %v", slug, err)
		s.writeJSON(w, http.StatusInternalServerError, askResponse{Text: BackendErrorText})
		return
	}

	s.writeJSON(w, http.StatusOK, askResponse{Text: reply.Text})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: fmt.Sprintf("method not allowed, use %s", allowed)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	return nil
}
