package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"slide-rag/internal/embedding"
	"slide-rag/internal/helper"
	"slide-rag/internal/parser"
	"slide-rag/internal/session"
)

// Server exposes the display boundary over HTTP: upload, ask, history,
// selection and reset. It holds a single session; one query is in
// flight at a time by the session contract.
type Server struct {
	session   *session.Session
	sessionID string
	maxFiles  int
}

func New(sess *session.Session, maxFiles int) *Server {
	id, _ := helper.GenerateUUID()
	return &Server{session: sess, sessionID: id, maxFiles: maxFiles}
}

// Routes builds the chi router for the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/ask", s.handleAsk)
	r.Get("/history", s.handleHistory)
	r.Post("/select", s.handleSelect)
	r.Get("/chunks", s.handleChunks)
	r.Post("/reset", s.handleReset)

	return r
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer  string `json:"answer"`
	Kind    string `json:"kind"`
	Warning bool   `json:"warning"`
}

type uploadResponse struct {
	SessionID string   `json:"session_id"`
	Files     []string `json:"files"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session_id": s.sessionID})
}

// handleUpload accepts up to maxFiles PDFs as multipart form files under
// the "files" field and builds the index as one unit.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(fileHeaders) > s.maxFiles {
		writeError(w, http.StatusBadRequest, session.ErrTooManyFiles.Error())
		return
	}

	files := make([]parser.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file: "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file: "+fh.Filename)
			return
		}
		files = append(files, parser.UploadedFile{Name: fh.Filename, Data: data})
	}

	if err := s.session.Upload(r.Context(), files); err != nil {
		status := http.StatusBadRequest
		var extractionErr *parser.ExtractionError
		switch {
		case errors.Is(err, embedding.ErrServiceUnavailable):
			status = http.StatusServiceUnavailable
		case errors.As(err, &extractionErr):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{SessionID: s.sessionID, Files: s.session.Filenames()})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	res, err := s.session.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, embedding.ErrServiceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		log.Error().Err(err).Msg("Ask failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:  res.Text,
		Kind:    res.Kind.String(),
		Warning: res.Kind.IsWarning(),
	})
}

type historyResponse struct {
	Turns    []turnJSON `json:"turns"`
	Selected *turnJSON  `json:"selected,omitempty"`
}

type turnJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	turns := s.session.History()
	out := historyResponse{Turns: make([]turnJSON, len(turns))}
	for i, t := range turns {
		out.Turns[i] = turnJSON{Question: t.Question, Answer: t.Answer}
	}
	if sel, ok := s.session.Selected(); ok {
		out.Selected = &turnJSON{Question: sel.Question, Answer: sel.Answer}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	if err := s.session.Select(i); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	n := 5
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	previews, err := s.session.PreviewChunks(r.Context(), n)
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, previews)
}

// handleReset clears history (mode=soft, default) or returns the whole
// session to the idle state (mode=hard). A hard reset issues a new
// session id.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("mode") {
	case "", "soft":
		s.session.SoftReset()
	case "hard":
		s.session.HardReset()
		s.sessionID, _ = helper.GenerateUUID()
	default:
		writeError(w, http.StatusBadRequest, "mode must be soft or hard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": s.sessionID})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
