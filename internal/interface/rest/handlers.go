package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/usecase"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
)

// StoreStatus exposes the document store connection state.
type StoreStatus interface {
	Available() bool
	Err() error
}

// Ingestor parses and persists one uploaded movement file.
type Ingestor interface {
	IngestFile(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error)
}

// QueryService reads uploads and their movements back out of the store.
type QueryService interface {
	ListUploads(ctx context.Context) ([]*entity.Upload, error)
	GetUpload(ctx context.Context, id string) (*entity.Upload, error)
	QueryMovements(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error)
}

type Handlers struct {
	store          StoreStatus
	ingestor       Ingestor
	query          QueryService
	uploadMaxBytes int64
	version        string
	upSince        time.Time
	logger         logger.Logger
}

func NewHandlers(store StoreStatus, ingestor Ingestor, query QueryService, uploadMaxMB int, version string, logger logger.Logger) *Handlers {
	return &Handlers{
		store:          store,
		ingestor:       ingestor,
		query:          query,
		uploadMaxBytes: int64(uploadMaxMB) << 20,
		version:        version,
		upSince:        time.Now(),
		logger:         logger,
	}
}

// UploadResult is the payload returned after a successful upload.
type UploadResult struct {
	Message       string `json:"message"`
	UploadedCount int    `json:"uploadedCount"`
	UploadID      string `json:"uploadId"`
}

// UploadMovements handles POST /api/v1/uploads. The file arrives as the
// multipart form field dataFile.
func (h *Handlers) UploadMovements(w http.ResponseWriter, r *http.Request) {
	if !h.store.Available() {
		respondWithError(w, http.StatusServiceUnavailable, "document store unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)

	file, header, err := r.FormFile("dataFile")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
			return
		}
		respondWithError(w, http.StatusBadRequest, "no file sent, expected multipart field dataFile")
		return
	}
	defer file.Close()

	result, err := h.ingestor.IngestFile(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, usecase.ErrNoValidRecords) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Upload processing failed", "filename", header.Filename, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to process uploaded file")
		return
	}

	respondWithSuccess(w, http.StatusCreated, &UploadResult{
		Message:       "file processed successfully",
		UploadedCount: result.Count,
		UploadID:      result.UploadID,
	})
}

// ListUploads handles GET /api/v1/uploads.
func (h *Handlers) ListUploads(w http.ResponseWriter, r *http.Request) {
	if !h.store.Available() {
		respondWithError(w, http.StatusServiceUnavailable, "document store unavailable")
		return
	}

	uploads, err := h.query.ListUploads(r.Context())
	if err != nil {
		h.logger.Error("Listing uploads failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}

	respondWithSuccess(w, http.StatusOK, &uploads)
}

// GetUpload handles GET /api/v1/uploads/{uploadID}.
func (h *Handlers) GetUpload(w http.ResponseWriter, r *http.Request) {
	if !h.store.Available() {
		respondWithError(w, http.StatusServiceUnavailable, "document store unavailable")
		return
	}

	id := chi.URLParam(r, "uploadID")
	upload, err := h.query.GetUpload(r.Context(), id)
	if err != nil {
		h.logger.Error("Upload lookup failed", "uploadId", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to fetch upload")
		return
	}
	if upload == nil {
		respondWithError(w, http.StatusNotFound, "upload not found")
		return
	}

	respondWithSuccess(w, http.StatusOK, upload)
}

// ListMovements handles GET /api/v1/uploads/{uploadID}/movements with the
// optional filters from, to (RFC 3339), q and limit.
func (h *Handlers) ListMovements(w http.ResponseWriter, r *http.Request) {
	if !h.store.Available() {
		respondWithError(w, http.StatusServiceUnavailable, "document store unavailable")
		return
	}

	query := usecase.MovementQuery{
		UploadID: chi.URLParam(r, "uploadID"),
		Search:   r.URL.Query().Get("q"),
	}

	if qs := r.URL.Query().Get("from"); qs != "" {
		t, err := time.Parse(time.RFC3339, qs)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from parameter, want an RFC 3339 timestamp")
			return
		}
		query.From = &t
	}
	if qs := r.URL.Query().Get("to"); qs != "" {
		t, err := time.Parse(time.RFC3339, qs)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to parameter, want an RFC 3339 timestamp")
			return
		}
		query.To = &t
	}
	if qs := r.URL.Query().Get("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		query.Limit = n
	}

	movements, err := h.query.QueryMovements(r.Context(), query)
	if errors.Is(err, usecase.ErrUploadNotFound) {
		respondWithError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		h.logger.Error("Movement query failed", "uploadId", query.UploadID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to query movements")
		return
	}

	respondWithSuccess(w, http.StatusOK, &movements)
}

// ServiceStatus reports one dependency inside the health payload.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// HealthStatus is the GET /health payload.
type HealthStatus struct {
	Status   string                   `json:"status"`
	Version  string                   `json:"version,omitempty"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}

// Health handles GET /health. It always answers 200 and reports store
// state in the payload.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]ServiceStatus)

	mongoStatus := ServiceStatus{Status: "ok"}
	if !h.store.Available() {
		mongoStatus.Status = "down"
		if err := h.store.Err(); err != nil {
			mongoStatus.Details = err.Error()
		}
	}
	services["mongodb"] = mongoStatus

	overall := "ok"
	for _, svc := range services {
		if svc.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	resp := HealthStatus{
		Status:   overall,
		Version:  h.version,
		Uptime:   time.Since(h.upSince).Round(time.Second).String(),
		Services: services,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
