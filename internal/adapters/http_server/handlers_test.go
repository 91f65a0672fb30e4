package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpserver "propiedades/internal/adapters/http_server"
	"propiedades/internal/app"
	"propiedades/internal/domain"
	"propiedades/internal/extract"
	"propiedades/internal/gazetteer"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	recs    map[string]domain.PropertyRecord
	lastQ   domain.RecordsQuery
	listErr error
}

func (f *fakeRepo) UpsertRecord(ctx context.Context, rec domain.PropertyRecord) error   { return nil }
func (f *fakeRepo) LogRejection(ctx context.Context, rep domain.RejectionReport) error { return nil }
func (f *fakeRepo) GetRecord(ctx context.Context, id string) (domain.PropertyRecord, error) {
	if r, ok := f.recs[id]; ok {
		return r, nil
	}
	return domain.PropertyRecord{}, domain.ErrNotFound
}
func (f *fakeRepo) ListRecords(ctx context.Context, q domain.RecordsQuery) (domain.RecordsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = q
	if f.listErr != nil {
		return domain.RecordsPage{}, f.listErr
	}
	var out []domain.PropertyRecord
	for _, r := range f.recs {
		out = append(out, r)
	}
	return domain.RecordsPage{Items: out}, nil
}
func (f *fakeRepo) Stats(ctx context.Context) (domain.Stats, error) {
	return domain.Stats{Total: len(f.recs), Accepted: len(f.recs), ByCity: []domain.Bucket{}}, nil
}

// noCache always misses so every request reaches the repo.
type noCache struct{}

func (noCache) Get(ctx context.Context, key string, dst any) (bool, error)     { return false, nil }
func (noCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
func (noCache) Del(ctx context.Context, key string) error                    { return nil }

func newServer(t *testing.T, repo *fakeRepo, checks map[string]func(context.Context) error) http.Handler {
	t.Helper()
	g, err := gazetteer.Default()
	if err != nil {
		t.Fatalf("gazetteer: %v", err)
	}
	p := extract.NewPipeline(g, extract.DefaultOptions())
	srv := httpserver.New(httpserver.Options{MaxBodyBytes: 4096})
	srv.MountHandlers(&httpserver.Handlers{
		Q:      app.NewQueryService(repo, noCache{}, time.Minute),
		X:      app.NewIngestionService(nil, repo, nil, p, app.IngestOptions{}),
		Checks: checks,
	})
	return srv.Mux()
}

func do(h http.Handler, method, target string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func seeded() *fakeRepo {
	city := "Cuernavaca"
	return &fakeRepo{recs: map[string]domain.PropertyRecord{
		"42": {ID: "42", Title: "Casa en Reforma", Status: domain.StatusAccepted, Location: domain.Location{City: &city}},
	}}
}

// ---- tests ----

func TestGetProperty_ETagAndNotModified(t *testing.T) {
	h := newServer(t, seeded(), nil)

	rr := do(h, "GET", "/v1/properties/42", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	var rec domain.PropertyRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil || rec.Title != "Casa en Reforma" {
		t.Fatalf("body: %v %+v", err, rec)
	}

	rr = do(h, "GET", "/v1/properties/42", "", map[string]string{"If-None-Match": etag})
	if rr.Code != http.StatusNotModified {
		t.Fatalf("want 304, got %d", rr.Code)
	}
}

func TestGetProperty_NotFoundIsProblem(t *testing.T) {
	rr := do(newServer(t, seeded(), nil), "GET", "/v1/properties/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
}

func TestListProperties_Filters(t *testing.T) {
	repo := seeded()
	h := newServer(t, repo, nil)

	rr := do(h, "GET", "/v1/properties?city=Cuernavaca&type=HOUSE&operation=sale&min_price=100000&limit=20&q=jard%C3%ADn", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	q := repo.lastQ
	if q.City == nil || *q.City != "Cuernavaca" || q.PropertyType == nil || *q.PropertyType != "house" {
		t.Fatalf("query: %+v", q)
	}
	if q.Operation == nil || *q.Operation != "sale" || q.MinPrice == nil || *q.MinPrice != 100000 || q.MaxPrice != nil {
		t.Fatalf("query: %+v", q)
	}
	if q.Limit != 20 || q.Q == nil || *q.Q != "jardín" {
		t.Fatalf("query: %+v", q)
	}
}

func TestListProperties_BadInput(t *testing.T) {
	h := newServer(t, seeded(), nil)
	for _, target := range []string{
		"/v1/properties?limit=500",
		"/v1/properties?limit=abc",
		"/v1/properties?type=castle",
		"/v1/properties?status=pending",
		"/v1/properties?min_price=-1",
		"/v1/properties?min_price=10&max_price=5",
	} {
		if rr := do(h, "GET", target, "", nil); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", target, rr.Code)
		}
	}
}

func TestListProperties_BadCursorFromRepo(t *testing.T) {
	repo := seeded()
	repo.listErr = errors.Join(domain.ErrInvalidInput, errors.New("bad cursor"))
	rr := do(newServer(t, repo, nil), "GET", "/v1/properties?cursor=zzz", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}
}

func TestStats(t *testing.T) {
	rr := do(newServer(t, seeded(), nil), "GET", "/v1/stats", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var st domain.Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil || st.Total != 1 {
		t.Fatalf("stats: %v %+v", err, st)
	}
}

func TestExtract(t *testing.T) {
	h := newServer(t, seeded(), nil)
	body := `{"title": "Depto en renta", "description": "Depto en renta $8,500/mes, 2 recámaras, cerca de Plaza Cuernavaca"}`
	rr := do(h, "POST", "/v1/extract?id=live-1", body, map[string]string{"Content-Type": "application/json"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out domain.Outcome
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Record == nil || out.Record.ID != "live-1" || out.Record.Characteristics.OperationType != domain.OperationRent {
		t.Fatalf("outcome: %+v", out)
	}
}

func TestExtract_BadBodies(t *testing.T) {
	h := newServer(t, seeded(), nil)
	if rr := do(h, "POST", "/v1/extract", `[1,2]`, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("array body: want 400, got %d", rr.Code)
	}
	big := `{"description": "` + strings.Repeat("a", 8192) + `"}`
	if rr := do(h, "POST", "/v1/extract", big, nil); rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("big body: want 413, got %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	if rr := do(newServer(t, seeded(), map[string]func(context.Context) error{"mysql": ok}), "GET", "/healthz", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthy: %d", rr.Code)
	}
	rr := do(newServer(t, seeded(), map[string]func(context.Context) error{"mysql": ok, "redis": down}), "GET", "/healthz", "", nil)
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "connection refused") {
		t.Fatalf("degraded: %d %s", rr.Code, rr.Body.String())
	}
}
