package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordrooms/internal/api/request"
	"github.com/mcoot/wordrooms/internal/api/response"
	"github.com/mcoot/wordrooms/internal/model"
)

// ResultStore reads finished game summaries
type ResultStore interface {
	GetGameSummary(ctx context.Context, id string) (*model.GameSummary, error)
	ListGameSummaries(ctx context.Context, limit int) ([]*model.GameSummary, error)
}

// ResultsHandler handles finished-game result endpoints
type ResultsHandler struct {
	store ResultStore
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(store ResultStore) *ResultsHandler {
	return &ResultsHandler{
		store: store,
	}
}

// List handles GET /api/v1/results
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseResultsQuery(r)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	summaries, err := h.store.ListGameSummaries(r.Context(), q.Limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	results := make([]response.GameSummary, len(summaries))
	for i, s := range summaries {
		results[i] = response.GameSummaryFromModel(s)
	}

	response.JSON(w, http.StatusOK, response.ResultList{Results: results})
}

// Get handles GET /api/v1/results/{id}
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	summary, err := h.store.GetGameSummary(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameSummaryFromModel(summary))
}
