package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/transliteration"
)

type ConvertHandler struct {
	conv     *converter.Converter
	log      *slog.Logger
	maxInput int
}

func NewConvertHandler(conv *converter.Converter, log *slog.Logger, maxInput int) *ConvertHandler {
	return &ConvertHandler{conv: conv, log: log, maxInput: maxInput}
}

type convertRequest struct {
	Text   string `json:"text"`
	Detail bool   `json:"detail"`
}

type tokenResponse struct {
	Text   string `json:"text"`
	Kind   string `json:"kind"`
	Route  string `json:"route"`
	Output string `json:"output"`
}

type convertResponse struct {
	Output     string                 `json:"output"`
	Unresolved []transliteration.Span `json:"unresolved"`
	Tokens     []tokenResponse        `json:"tokens,omitempty"`
}

// Post converts {"text": "..."}. Empty text is valid and yields an empty
// output.
func (h *ConvertHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.respond(w, req)
}

// Get converts ?text=...
func (h *ConvertHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	detail, _ := strconv.ParseBool(q.Get("detail"))
	h.respond(w, convertRequest{Text: q.Get("text"), Detail: detail})
}

func (h *ConvertHandler) respond(w http.ResponseWriter, req convertRequest) {
	if h.maxInput > 0 && len(req.Text) > h.maxInput {
		writeError(w, http.StatusRequestEntityTooLarge, "text must be "+strconv.Itoa(h.maxInput)+" bytes or fewer")
		return
	}

	res := h.conv.Convert("web", req.Text)
	resp := convertResponse{
		Output:     res.Output,
		Unresolved: res.Unresolved,
	}
	if resp.Unresolved == nil {
		resp.Unresolved = []transliteration.Span{}
	}
	if req.Detail {
		resp.Tokens = make([]tokenResponse, len(res.Parts))
		for i, p := range res.Parts {
			resp.Tokens[i] = tokenResponse{
				Text:   p.Token.Text,
				Kind:   p.Token.Kind.String(),
				Route:  p.Route.String(),
				Output: p.Output,
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
