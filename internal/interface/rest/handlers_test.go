package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/usecase"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
	"github.com/GERNAVSBIZ/movimento/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("movimento_rest_test")

type fakeStore struct {
	err error
}

func (s *fakeStore) Available() bool { return s.err == nil }
func (s *fakeStore) Err() error      { return s.err }

type mockIngestor struct {
	ingestFn func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error)
}

func (m *mockIngestor) IngestFile(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
	return m.ingestFn(ctx, filename, file)
}

type mockQueryService struct {
	listUploadsFn    func(ctx context.Context) ([]*entity.Upload, error)
	getUploadFn      func(ctx context.Context, id string) (*entity.Upload, error)
	queryMovementsFn func(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error)
}

func (m *mockQueryService) ListUploads(ctx context.Context) ([]*entity.Upload, error) {
	return m.listUploadsFn(ctx)
}

func (m *mockQueryService) GetUpload(ctx context.Context, id string) (*entity.Upload, error) {
	return m.getUploadFn(ctx, id)
}

func (m *mockQueryService) QueryMovements(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error) {
	return m.queryMovementsFn(ctx, query)
}

func newTestRouter(store StoreStatus, ingestor Ingestor, query QueryService) http.Handler {
	h := NewHandlers(store, ingestor, query, 8, "test", logger.NewNop())
	return NewRouter(h, testMetrics, 1000, 1000)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadMovementsSuccess(t *testing.T) {
	var gotFilename, gotContent string
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			gotFilename = filename
			data, err := io.ReadAll(file)
			if err != nil {
				t.Fatalf("reading upload failed: %v", err)
			}
			gotContent = string(data)
			return &usecase.IngestResult{UploadID: "abc-123", Count: 42}, nil
		},
	}

	router := newTestRouter(&fakeStore{}, ingestor, &mockQueryService{})

	body, contentType := multipartBody(t, "dataFile", "torre.dat", "movement file contents\n")
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rr.Code, rr.Body.String())
	}
	if gotFilename != "torre.dat" {
		t.Errorf("ingested filename = %q, want torre.dat", gotFilename)
	}
	if gotContent != "movement file contents\n" {
		t.Errorf("ingested content = %q, want the uploaded bytes", gotContent)
	}

	var resp APIResponse[UploadResult]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %q, want success", resp.Status)
	}
	if resp.Data == nil || resp.Data.UploadID != "abc-123" || resp.Data.UploadedCount != 42 {
		t.Errorf("payload = %+v, want uploadId abc-123 and uploadedCount 42", resp.Data)
	}
}

func TestUploadMovementsMissingFile(t *testing.T) {
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			t.Fatal("IngestFile must not be called without a form file")
			return nil, nil
		},
	}

	router := newTestRouter(&fakeStore{}, ingestor, &mockQueryService{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("note", "no file here"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadMovementsNoValidRecords(t *testing.T) {
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			return nil, usecase.ErrNoValidRecords
		},
	}

	router := newTestRouter(&fakeStore{}, ingestor, &mockQueryService{})

	body, contentType := multipartBody(t, "dataFile", "vazio.dat", "SHORT\n")
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	var resp APIResponse[UploadResult]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Status != "error" || resp.Error != "no valid records found in file" {
		t.Errorf("envelope = %q/%q, want error/no valid records found in file", resp.Status, resp.Error)
	}
}

func TestUploadMovementsIngestFailure(t *testing.T) {
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			return nil, errors.New("insert failed")
		},
	}

	router := newTestRouter(&fakeStore{}, ingestor, &mockQueryService{})

	body, contentType := multipartBody(t, "dataFile", "torre.dat", "contents\n")
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestUploadMovementsStoreUnavailable(t *testing.T) {
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			t.Fatal("IngestFile must not be called while the store is down")
			return nil, nil
		},
	}

	router := newTestRouter(&fakeStore{err: errors.New("ping timeout")}, ingestor, &mockQueryService{})

	body, contentType := multipartBody(t, "dataFile", "torre.dat", "contents\n")
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestListUploads(t *testing.T) {
	query := &mockQueryService{
		listUploadsFn: func(ctx context.Context) ([]*entity.Upload, error) {
			return []*entity.Upload{{ID: "u2"}, {ID: "u1"}}, nil
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	req := httptest.NewRequest("GET", "/api/v1/uploads", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp APIResponse[[]*entity.Upload]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Data == nil || len(*resp.Data) != 2 || (*resp.Data)[0].ID != "u2" {
		t.Errorf("payload = %+v, want the two uploads in order", resp.Data)
	}
}

func TestGetUpload(t *testing.T) {
	query := &mockQueryService{
		getUploadFn: func(ctx context.Context, id string) (*entity.Upload, error) {
			if id != "u1" {
				t.Errorf("GetUpload(%q), want u1", id)
			}
			return &entity.Upload{ID: "u1", Filename: "torre.dat"}, nil
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	req := httptest.NewRequest("GET", "/api/v1/uploads/u1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp APIResponse[entity.Upload]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Data == nil || resp.Data.Filename != "torre.dat" {
		t.Errorf("payload = %+v, want the stored upload", resp.Data)
	}
}

func TestGetUploadNotFound(t *testing.T) {
	query := &mockQueryService{
		getUploadFn: func(ctx context.Context, id string) (*entity.Upload, error) {
			return nil, nil
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	req := httptest.NewRequest("GET", "/api/v1/uploads/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestListMovementsFilterParsing(t *testing.T) {
	var gotQuery usecase.MovementQuery
	query := &mockQueryService{
		queryMovementsFn: func(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error) {
			gotQuery = query
			return []*entity.Movement{{Registration: "PT-MEL"}}, nil
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	req := httptest.NewRequest("GET", "/api/v1/uploads/u1/movements?from=2024-06-15T00:00:00Z&to=2024-06-16T00:00:00Z&q=PT&limit=10", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	if gotQuery.UploadID != "u1" || gotQuery.Search != "PT" || gotQuery.Limit != 10 {
		t.Errorf("query = %+v, want uploadID u1, search PT, limit 10", gotQuery)
	}
	wantFrom := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if gotQuery.From == nil || !gotQuery.From.Equal(wantFrom) {
		t.Errorf("query.From = %v, want %v", gotQuery.From, wantFrom)
	}

	var resp APIResponse[[]*entity.Movement]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Data == nil || len(*resp.Data) != 1 || (*resp.Data)[0].Registration != "PT-MEL" {
		t.Errorf("payload = %+v, want one movement for PT-MEL", resp.Data)
	}
}

func TestListMovementsInvalidFilters(t *testing.T) {
	query := &mockQueryService{
		queryMovementsFn: func(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error) {
			t.Fatal("QueryMovements must not be called with invalid filters")
			return nil, nil
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	urls := []string{
		"/api/v1/uploads/u1/movements?from=yesterday",
		"/api/v1/uploads/u1/movements?to=15-06-2024",
		"/api/v1/uploads/u1/movements?limit=abc",
		"/api/v1/uploads/u1/movements?limit=-5",
	}
	for _, url := range urls {
		req := httptest.NewRequest("GET", url, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", url, rr.Code)
		}
	}
}

func TestListMovementsUnknownUpload(t *testing.T) {
	query := &mockQueryService{
		queryMovementsFn: func(ctx context.Context, query usecase.MovementQuery) ([]*entity.Movement, error) {
			return nil, usecase.ErrUploadNotFound
		},
	}

	router := newTestRouter(&fakeStore{}, &mockIngestor{}, query)

	req := httptest.NewRequest("GET", "/api/v1/uploads/missing/movements", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeStore{}, &mockIngestor{}, &mockQueryService{})

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Status != "ok" || resp.Services["mongodb"].Status != "ok" {
		t.Errorf("health = %+v, want ok with mongodb up", resp)
	}
}

func TestHealthDegraded(t *testing.T) {
	router := newTestRouter(&fakeStore{err: errors.New("ping timeout")}, &mockIngestor{}, &mockQueryService{})

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even while degraded", rr.Code)
	}

	var resp HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Status != "degraded" || resp.Services["mongodb"].Status != "down" {
		t.Errorf("health = %+v, want degraded with mongodb down", resp)
	}
	if resp.Services["mongodb"].Details != "ping timeout" {
		t.Errorf("mongodb details = %q, want the connection error", resp.Services["mongodb"].Details)
	}
}

func TestUploadRateLimit(t *testing.T) {
	ingestor := &mockIngestor{
		ingestFn: func(ctx context.Context, filename string, file io.Reader) (*usecase.IngestResult, error) {
			return &usecase.IngestResult{UploadID: "x", Count: 1}, nil
		},
	}

	h := NewHandlers(&fakeStore{}, ingestor, &mockQueryService{}, 8, "test", logger.NewNop())
	router := NewRouter(h, testMetrics, 1, 2)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		body, contentType := multipartBody(t, "dataFile", "torre.dat", "contents\n")
		req := httptest.NewRequest("POST", "/api/v1/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.RemoteAddr = "192.0.2.7:1234"

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		statuses = append(statuses, rr.Code)
	}

	limited := 0
	for _, code := range statuses {
		if code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Errorf("statuses = %v, want at least one 429 after the burst", statuses)
	}
	if statuses[0] != http.StatusCreated {
		t.Errorf("first status = %d, want 201 inside the burst", statuses[0])
	}
}
