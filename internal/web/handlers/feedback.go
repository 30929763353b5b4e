package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/web/middleware"
)

const (
	maxFeedbackText    = 2000
	maxFeedbackPerDay  = 50
	maxFeedbackComment = 500
)

type FeedbackHandler struct {
	repo db.Repository
	conv *converter.Converter
	log  *slog.Logger
}

func NewFeedbackHandler(repo db.Repository, conv *converter.Converter, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{repo: repo, conv: conv, log: log}
}

type createFeedbackRequest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Comment  string `json:"comment"`
}

type feedbackResponse struct {
	ID        int64  `json:"id"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Expected  string `json:"expected"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toFeedbackResponse(f db.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:        f.ID,
		Input:     f.Input,
		Output:    f.Output,
		Expected:  f.Expected,
		Comment:   f.Comment.String,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}

// Create records that input should have converted to expected. The output
// stored is what the engine produces now, not what the client claims.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	switch {
	case req.Input == "" || req.Expected == "":
		writeError(w, http.StatusBadRequest, "input and expected are required")
		return
	case len(req.Input) > maxFeedbackText || len(req.Expected) > maxFeedbackText:
		writeError(w, http.StatusBadRequest, "input and expected must be "+strconv.Itoa(maxFeedbackText)+" bytes or fewer")
		return
	case len(req.Comment) > maxFeedbackComment:
		writeError(w, http.StatusBadRequest, "comment must be "+strconv.Itoa(maxFeedbackComment)+" bytes or fewer")
		return
	}

	ipHash := hashIP(middleware.ClientIP(r))
	count, err := h.repo.CountFeedbackByIP(r.Context(), db.CountFeedbackByIPParams{
		IpHash: ipHash,
		Since:  time.Now().Add(-24 * time.Hour),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting feedback by ip", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if count >= maxFeedbackPerDay {
		metrics.FeedbackSubmissions.WithLabelValues("limited").Inc()
		writeError(w, http.StatusTooManyRequests, "daily feedback limit reached")
		return
	}

	output := h.conv.Convert("web", req.Input).Output
	fb, err := h.repo.CreateFeedback(r.Context(), db.CreateFeedbackParams{
		Input:    req.Input,
		Output:   output,
		Expected: req.Expected,
		Comment:  sql.NullString{String: req.Comment, Valid: req.Comment != ""},
		IpHash:   ipHash,
	})
	if err != nil {
		metrics.FeedbackSubmissions.WithLabelValues("failed").Inc()
		h.log.ErrorContext(r.Context(), "creating feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result := "mismatch"
	if output == req.Expected {
		result = "match"
	}
	metrics.FeedbackSubmissions.WithLabelValues(result).Inc()

	writeJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	fb, err := h.repo.GetFeedback(r.Context(), id)
	if db.IsNoRows(err) {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "getting feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	total, err := h.repo.CountFeedback(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows, err := h.repo.ListFeedback(r.Context(), db.ListFeedbackParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]feedbackResponse, len(rows))
	for i, row := range rows {
		data[i] = toFeedbackResponse(row)
	}

	writeJSON(w, http.StatusOK, struct {
		Data       []feedbackResponse `json:"data"`
		Pagination paginationMeta     `json:"pagination"`
	}{
		Data: data,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}
