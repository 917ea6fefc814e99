// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// MaxRequestBodySize is the maximum size for a request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// Version is the server version.
	Version = "1.0.0"
)

// Error codes carried in the JSON error envelope.
const (
	CodeAPIKeyMissing   = "API_KEY_MISSING"
	CodeUpstreamError   = "UPSTREAM_ERROR"
	CodeConnectionError = "CONNECTION_ERROR"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeMissingMessage  = "MISSING_MESSAGE"
	CodeSystemError     = "SYSTEM_ERROR"
	CodeNotFound        = "NOT_FOUND"
)

// ============================================================================
// SERVER
// ============================================================================

// Options configures the proxy server.
type Options struct {
	// Addr is the host:port to bind.
	Addr string
	// AllowedOrigins is the CORS allow-list; "*" allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP proxy that fronts the model providers, keeping API
// keys server-side.
type Server struct {
	opts   Options
	router *http.ServeMux
	server *http.Server

	backends *backend.Registry
	log      *zap.Logger
}

// NewServer creates a proxy server over the given backend registry.
func NewServer(opts Options, backends *backend.Registry, log *zap.Logger) *Server {
	s := &Server{
		opts:     opts,
		router:   http.NewServeMux(),
		backends: backends,
		log:      log,
	}
	s.setupRoutes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/gemini", s.handleGemini)
	s.router.HandleFunc("POST /api/llm7/chat", s.handleLLM7(""))
	s.router.HandleFunc("POST /api/llm7/gpt-5-chat", s.handleLLM7("gpt-5-chat"))
	s.router.HandleFunc("POST /api/llm7/gemini-search", s.handleLLM7("gemini-search"))
	s.router.HandleFunc("POST /api/pollinations/generate", s.handleGenerateImage)
	s.router.HandleFunc("POST /api/enhance-prompt", s.handleEnhancePrompt)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("/", s.handleNotFound)
}

// ============================================================================
// WIRE TYPES
// ============================================================================

// ChatMessage is one history turn in a proxy chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// geminiProxyRequest is the /api/gemini request body: the upstream model and
// the raw generateContent payload forwarded verbatim.
type geminiProxyRequest struct {
	Model   string          `json:"model"`
	Payload json.RawMessage `json:"payload"`
}

// chatProxyRequest is the body for the /api/llm7/* endpoints.
type chatProxyRequest struct {
	Message string        `json:"message"`
	Model   string        `json:"model,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
}

// chatProxyResponse is the reply envelope for the /api/llm7/* endpoints.
type chatProxyResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// imageProxyRequest is the body for image generation and prompt enhancement.
type imageProxyRequest struct {
	Prompt string `json:"prompt"`
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleGemini forwards a raw generateContent payload to the Gemini API
// using the server-side key and returns the provider JSON untouched.
func (s *Server) handleGemini(w http.ResponseWriter, r *http.Request) {
	var req geminiProxyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	out, err := s.backends.Gemini().Forward(r.Context(), req.Model, req.Payload)
	if err != nil {
		s.writeBackendError(w, err, "Gemini")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// handleLLM7 serves the chat-completions proxy endpoints. A non-empty
// fixedModel pins the upstream model regardless of the request body.
func (s *Server) handleLLM7(fixedModel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatProxyRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if req.Message == "" {
			s.writeError(w, http.StatusBadRequest, "message must not be empty", CodeMissingMessage)
			return
		}

		modelID := fixedModel
		if modelID == "" {
			modelID = req.Model
		}

		reply, err := s.backends.For(modelID).Invoke(r.Context(), backend.Request{
			Message: req.Message,
			History: toBackendHistory(req.History),
		})
		if err != nil {
			s.writeBackendError(w, err, "LLM7")
			return
		}

		s.writeJSON(w, http.StatusOK, chatProxyResponse{Reply: reply, Model: modelID})
	}
}

// handleGenerateImage enhances the prompt and triggers image generation,
// returning the image URL.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageProxyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt must not be empty", CodeMissingMessage)
		return
	}

	image := s.backends.Image()
	prompt := image.EnhancePrompt(r.Context(), req.Prompt)
	imageURL, err := image.GenerateURL(r.Context(), prompt)
	if err != nil {
		s.writeBackendError(w, err, "Pollinations")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"image_url": imageURL,
		"prompt":    prompt,
	})
}

// handleEnhancePrompt runs the prompt enhancement pass alone.
func (s *Server) handleEnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req imageProxyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt must not be empty", CodeMissingMessage)
		return
	}

	enhanced := s.backends.Image().EnhancePrompt(r.Context(), req.Prompt)
	s.writeJSON(w, http.StatusOK, map[string]string{"enhanced_prompt": enhanced})
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

// handleNotFound answers unknown paths with the JSON envelope instead of
// the default plain-text 404.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "API endpoint does not exist", CodeNotFound)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	handler := Chain(
		RecoveryMiddleware(s.log),
		LoggingMiddleware(s.log),
		CORSMiddleware(&CORSConfig{AllowedOrigins: s.opts.AllowedOrigins}),
	)(s.router)

	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Info("server starting",
		zap.String("addr", s.opts.Addr),
		zap.String("version", Version))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Handler returns the routing mux without the middleware chain. Tests
// exercise handlers through it directly.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ============================================================================
// HELPERS
// ============================================================================

// decodeBody reads and decodes a JSON request body, writing the error
// envelope and returning false when the body is unusable.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON", CodeInvalidJSON)
		return false
	}
	return true
}

// writeBackendError maps the backend error taxonomy onto the HTTP error
// envelope, mirroring the status codes of the original proxy.
func (s *Server) writeBackendError(w http.ResponseWriter, err error, provider string) {
	var clientErr *backend.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case backend.ErrTypeAPIKeyMissing:
			s.writeError(w, http.StatusInternalServerError,
				provider+" API key is not configured", CodeAPIKeyMissing)
			return
		case backend.ErrTypeUpstream:
			s.writeError(w, http.StatusBadGateway,
				provider+" API error: "+clientErr.Message, CodeUpstreamError)
			return
		case backend.ErrTypeConnection, backend.ErrTypeTimeout:
			s.writeError(w, http.StatusBadGateway,
				"could not reach the "+provider+" API", CodeConnectionError)
			return
		}
	}

	s.log.Error("unexpected backend error", zap.Error(err))
	s.writeError(w, http.StatusServiceUnavailable, "system error: "+err.Error(), CodeSystemError)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, message, code string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// toBackendHistory converts wire history to the backend shape.
func toBackendHistory(history []ChatMessage) []model.ChatMessage {
	if len(history) == 0 {
		return nil
	}
	out := make([]model.ChatMessage, 0, len(history))
	for _, msg := range history {
		out = append(out, model.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}
