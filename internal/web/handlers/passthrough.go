package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db"
)

const maxWordLen = 64

type PassthroughHandler struct {
	repo db.Repository
	conv *converter.Converter
	log  *slog.Logger
}

func NewPassthroughHandler(repo db.Repository, conv *converter.Converter, log *slog.Logger) *PassthroughHandler {
	return &PassthroughHandler{repo: repo, conv: conv, log: log}
}

type addWordRequest struct {
	Word    string `json:"word"`
	AddedBy string `json:"added_by"`
}

type wordResponse struct {
	ID        int64  `json:"id"`
	Word      string `json:"word"`
	CreatedAt string `json:"created_at"`
}

// List returns every word the active engine passes through, built-in and
// stored.
func (h *PassthroughHandler) List(w http.ResponseWriter, r *http.Request) {
	words := h.conv.Engine().Registry().Words()
	writeJSON(w, http.StatusOK, struct {
		Data  []string `json:"data"`
		Total int      `json:"total"`
	}{Data: words, Total: len(words)})
}

// Create stores a word and makes the engine pass it through immediately.
// The registry only grows; there is no delete.
func (h *PassthroughHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	word := strings.TrimSpace(req.Word)
	if msg := validateWord(word); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	stored, err := h.repo.AddPassthroughWord(r.Context(), db.AddPassthroughWordParams{
		Word:    word,
		AddedBy: sql.NullString{String: req.AddedBy, Valid: req.AddedBy != ""},
	})
	if errors.Is(err, db.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, "word already registered")
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "adding passthrough word", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.conv.AddWords(stored.Word); err != nil {
		h.log.ErrorContext(r.Context(), "rebuilding engine", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.log.InfoContext(r.Context(), "passthrough word added", "word", stored.Word)

	writeJSON(w, http.StatusCreated, wordResponse{
		ID:        stored.ID,
		Word:      stored.Word,
		CreatedAt: stored.CreatedAt.Format(time.RFC3339),
	})
}

func validateWord(word string) string {
	if word == "" {
		return "word is required"
	}
	if len(word) > maxWordLen {
		return "word must be 64 bytes or fewer"
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '\'' && r != '.' {
			return "word may only contain letters, apostrophes and dots"
		}
	}
	return ""
}
