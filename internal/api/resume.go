package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxUploadBytes   = 32 << 20
	signedURLExpires = time.Hour
)

type uploadedResume struct {
	ID            string `json:"id"`
	CandidateName string `json:"candidate_name"`
	FileName      string `json:"file_name"`
}

type uploadResponse struct {
	Batch    string           `json:"batch"`
	Uploaded []uploadedResume `json:"uploaded"`
	Failed   []string         `json:"failed,omitempty"`
}

// UploadResumesHandler ingests a batch of PDF resumes. A file that fails
// extraction or embedding is reported but does not abort the batch.
func (a *API) UploadResumesHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	batch := strings.TrimSpace(r.FormValue("batch"))
	if batch == "" {
		a.writeError(w, http.StatusBadRequest, "batch name is required")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		a.writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	resp := uploadResponse{Batch: batch}
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			resp.Failed = append(resp.Failed, header.Filename)
			continue
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			resp.Failed = append(resp.Failed, header.Filename)
			continue
		}

		result, err := a.ingester.Ingest(r.Context(), batch, header.Filename, data)
		if err != nil {
			a.logger.Warn("resume upload failed",
				zap.String("file", header.Filename),
				zap.Error(err),
			)
			resp.Failed = append(resp.Failed, header.Filename)
			continue
		}

		resp.Uploaded = append(resp.Uploaded, uploadedResume{
			ID:            result.ID,
			CandidateName: result.CandidateName,
			FileName:      header.Filename,
		})
	}

	status := http.StatusCreated
	if len(resp.Uploaded) == 0 {
		status = http.StatusUnprocessableEntity
	}
	a.writeJSON(w, status, resp)
}

// GetResumeHandler returns a resume with a signed download URL for its PDF.
func (a *API) GetResumeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	resume, err := a.store.GetResume(r.Context(), id)
	if err != nil {
		a.logger.Error("fetching resume", zap.String("id", id), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "fetching resume failed")
		return
	}
	if resume == nil {
		a.writeError(w, http.StatusNotFound, "resume not found")
		return
	}

	payload := map[string]any{"resume": resume}
	if url, err := a.signer.SignedURL(r.Context(), resume.StoragePath, signedURLExpires); err != nil {
		a.logger.Warn("signing download url", zap.String("id", id), zap.Error(err))
	} else {
		payload["download_url"] = url
	}

	a.writeJSON(w, http.StatusOK, payload)
}

// BatchStatsHandler lists upload batches with resume counts.
func (a *API) BatchStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.BatchStats(r.Context())
	if err != nil {
		a.logger.Error("fetching batch stats", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "fetching batch stats failed")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"batches": stats})
}
