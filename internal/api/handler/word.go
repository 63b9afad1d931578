package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/wordrooms/internal/api/request"
	"github.com/mcoot/wordrooms/internal/api/response"
	"github.com/mcoot/wordrooms/internal/services/validator"
)

// WordHandler handles standalone word checks
type WordHandler struct {
	validator *validator.Service
}

// NewWordHandler creates a new word handler
func NewWordHandler(validator *validator.Service) *WordHandler {
	return &WordHandler{
		validator: validator,
	}
}

// CheckWord handles GET /api/v1/check_word?word=...
func (h *WordHandler) CheckWord(w http.ResponseWriter, r *http.Request) {
	q := request.ParseCheckWordQuery(r)
	if strings.TrimSpace(q.Word) == "" {
		WriteError(w, NewInvalidRequestError("word is required"))
		return
	}

	verdict := h.validator.CheckWord(r.Context(), q.Word)
	response.JSON(w, http.StatusOK, response.CheckWordFromVerdict(verdict))
}
