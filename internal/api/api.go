// Package api exposes the recruiter-facing HTTP surface: resume upload,
// ranked search, batch statistics and the shortlist board.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dshevko/talentsift/internal/ingest"
	"github.com/dshevko/talentsift/internal/pipeline"
	"github.com/dshevko/talentsift/internal/store"
	"go.uber.org/zap"
)

// Ranker runs the retrieval-and-ranking pipeline for one query.
type Ranker interface {
	Rank(ctx context.Context, query string, batchFilter []string, topK int) ([]pipeline.RankedCandidate, error)
}

// Ingester turns one uploaded PDF into a stored resume.
type Ingester interface {
	Ingest(ctx context.Context, batch, fileName string, data []byte) (*ingest.Result, error)
}

// Store is the persistence surface the handlers need.
type Store interface {
	GetResume(ctx context.Context, id string) (*store.Resume, error)
	BatchStats(ctx context.Context) ([]store.BatchStat, error)
	AddToShortlist(ctx context.Context, resumeIDs []string, roleName string) (int, error)
	ListShortlisted(ctx context.Context, roleFilter string) ([]store.ShortlistEntry, error)
	ListShortlistRoles(ctx context.Context) ([]string, error)
	UpdateShortlist(ctx context.Context, id, status, notes string) (*store.ShortlistEntry, error)
	RemoveFromShortlist(ctx context.Context, id string) error
}

// URLSigner issues time-limited download URLs for stored PDFs.
type URLSigner interface {
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

// API bundles the handler dependencies.
type API struct {
	ranker   Ranker
	ingester Ingester
	store    Store
	signer   URLSigner
	logger   *zap.Logger
}

func New(ranker Ranker, ingester Ingester, st Store, signer URLSigner, logger *zap.Logger) *API {
	return &API{
		ranker:   ranker,
		ingester: ingester,
		store:    st,
		signer:   signer,
		logger:   logger,
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("encoding response", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, map[string]string{"error": msg})
}
