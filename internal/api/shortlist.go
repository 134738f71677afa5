package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dshevko/talentsift/internal/store"
	"go.uber.org/zap"
)

type addToShortlistRequest struct {
	ResumeIDs []string `json:"resume_ids"`
	Role      string   `json:"role"`
}

type updateShortlistRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// AddToShortlistHandler bulk-adds resumes to a role's shortlist. Pairs
// already shortlisted are absorbed silently; only new rows are counted.
func (a *API) AddToShortlistHandler(w http.ResponseWriter, r *http.Request) {
	var req addToShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		a.writeError(w, http.StatusBadRequest, "role is required")
		return
	}
	if len(req.ResumeIDs) == 0 {
		a.writeError(w, http.StatusBadRequest, "resume_ids must not be empty")
		return
	}

	added, err := a.store.AddToShortlist(r.Context(), req.ResumeIDs, req.Role)
	if err != nil {
		a.logger.Error("adding to shortlist", zap.String("role", req.Role), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "adding to shortlist failed")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

// ListShortlistHandler lists shortlist entries, optionally for one role.
func (a *API) ListShortlistHandler(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")

	entries, err := a.store.ListShortlisted(r.Context(), role)
	if err != nil {
		a.logger.Error("listing shortlist", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "listing shortlist failed")
		return
	}
	if entries == nil {
		entries = []store.ShortlistEntry{}
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (a *API) ListShortlistRolesHandler(w http.ResponseWriter, r *http.Request) {
	roles, err := a.store.ListShortlistRoles(r.Context())
	if err != nil {
		a.logger.Error("listing shortlist roles", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "listing shortlist roles failed")
		return
	}
	if roles == nil {
		roles = []string{}
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// UpdateShortlistHandler overwrites status and notes for an entry.
func (a *API) UpdateShortlistHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !store.ValidStatus(req.Status) {
		a.writeError(w, http.StatusBadRequest, "unknown status: "+req.Status)
		return
	}

	entry, err := a.store.UpdateShortlist(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		a.logger.Error("updating shortlist entry", zap.String("id", id), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "updating shortlist entry failed")
		return
	}
	if entry == nil {
		a.writeError(w, http.StatusNotFound, "shortlist entry not found")
		return
	}

	a.writeJSON(w, http.StatusOK, entry)
}

// RemoveFromShortlistHandler deletes an entry. Removal is idempotent, so
// unknown ids still answer 204.
func (a *API) RemoveFromShortlistHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.store.RemoveFromShortlist(r.Context(), id); err != nil {
		a.logger.Error("removing shortlist entry", zap.String("id", id), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "removing shortlist entry failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
