package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/conv"
)

// maxBodyBytes caps request bodies; history travels inside the answer request.
const maxBodyBytes = 1 << 20

type answerRequest struct {
	Query               string      `json:"query"`
	ConversationHistory []core.Turn `json:"conversation_history"`
}

type messageRequest struct {
	Query string `json:"query"`
}

type indexResponse struct {
	Size           int    `json:"size"`
	Dimensions     int    `json:"dimensions"`
	EmbeddingModel string `json:"embedding_model"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, indexResponse{
		Size:           s.index.Size(),
		Dimensions:     s.index.Dimensions(),
		EmbeddingModel: s.index.EmbeddingModel(),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}

	history, err := core.CleanHistory(req.ConversationHistory)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Query, history)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, render(answer))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	turns, err := s.sessions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if turns == nil {
		turns = []core.Turn{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": turns})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	answer, err := s.sessions.Ask(r.Context(), chi.URLParam(r, "id"), req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, render(answer))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := hlog.FromRequest(r).Error()
	if status < http.StatusInternalServerError {
		event = hlog.FromRequest(r).Debug()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyQuery), errors.Is(err, core.ErrInvalidHistory):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrEmbedding), errors.Is(err, core.ErrModelUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body of at most maxBodyBytes into v and writes the
// error response itself when that fails.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	respondError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func render(answer *core.Answer) core.Response {
	resp := answer.Response()
	resp.AnswerHTML = conv.MarkdownToHTML([]byte(answer.Text))
	return resp
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
