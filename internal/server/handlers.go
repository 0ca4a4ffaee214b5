package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"pyscope/internal/outline"
)

// errorResponse is the failure body. Transport failures (bad upload) answer
// 400; parse failures answer 422 so the renderer can show "could not parse"
// instead of an empty diagram.
type errorResponse struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

// handleOutline accepts a multipart upload (field "file") and responds with
// the outline tree, or a distinct error body when the file cannot be
// accepted or parsed.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// The multipart framing adds some overhead beyond the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusBadRequest, errorResponse{Error: "file too large"})
			return
		}
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "no file provided"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "no file selected"})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".py") {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid file type, please upload a .py file"})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "failed to read upload"})
		return
	}
	if int64(len(content)) > s.cfg.MaxUploadBytes {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "file too large"})
		return
	}
	if !utf8.Valid(content) {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "file is not valid UTF-8 text"})
		return
	}

	tree, err := outline.Extract(string(content))
	if err != nil {
		var parseErr *outline.ParseError
		if errors.As(err, &parseErr) {
			s.logger.Info("parse failure",
				slog.String("file", header.Filename),
				slog.Int("line", parseErr.Line))
			s.writeError(w, http.StatusUnprocessableEntity, errorResponse{Error: parseErr.Message, Line: parseErr.Line})
			return
		}
		s.logger.Error("extraction failed", slog.String("file", header.Filename), slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tree); err != nil {
		s.logger.Error("failed to encode outline", slog.Any("error", err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
