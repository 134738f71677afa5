package api

import "net/http"

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("POST /api/search", a.SearchHandler)

	mux.HandleFunc("POST /api/resumes", a.UploadResumesHandler)
	mux.HandleFunc("GET /api/resumes/{id}", a.GetResumeHandler)
	mux.HandleFunc("GET /api/batches", a.BatchStatsHandler)

	mux.HandleFunc("POST /api/shortlist", a.AddToShortlistHandler)
	mux.HandleFunc("GET /api/shortlist", a.ListShortlistHandler)
	mux.HandleFunc("GET /api/shortlist/roles", a.ListShortlistRolesHandler)
	mux.HandleFunc("PATCH /api/shortlist/{id}", a.UpdateShortlistHandler)
	mux.HandleFunc("DELETE /api/shortlist/{id}", a.RemoveFromShortlistHandler)

	return mux
}
