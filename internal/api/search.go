package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dshevko/talentsift/internal/pipeline"
	"go.uber.org/zap"
)

type searchRequest struct {
	Query   string   `json:"query"`
	Batches []string `json:"batches,omitempty"`
	TopK    int      `json:"top_k,omitempty"`
}

type searchResponse struct {
	Results []pipeline.RankedCandidate `json:"results"`
	Count   int                        `json:"count"`
	Message string                     `json:"message,omitempty"`
}

// SearchHandler runs a ranked search for a free-text job description.
// Scoring degradation is invisible here: fallback entries render like any
// other result. Only embedding or retrieval failures produce an error.
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := a.ranker.Rank(r.Context(), req.Query, req.Batches, req.TopK)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("search failed", zap.Error(err))
		a.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := searchResponse{Results: results, Count: len(results)}
	if len(results) == 0 {
		resp.Message = "no matching resumes found"
	}

	a.writeJSON(w, http.StatusOK, resp)
}
