package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"propiedades/internal/app"
	"propiedades/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	// X runs the extraction pipeline for POST /v1/extract; nil disables the route.
	X *app.IngestionService
	// Checks are probed by /healthz, keyed by dependency name.
	Checks map[string]func(context.Context) error
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Get("/stats", h.stats)
		if h.X != nil {
			r.With(BodyLimit(s.maxBody)).Post("/extract", h.extract)
		}
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeCached answers 304 when the client already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any, name string) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("handler", name).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]string{}
	healthy := true
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"ok": healthy, "checks": status})
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	rec, err := h.Q.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "property not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("get property failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load property")
		return
	}
	writeCached(w, r, rec, "getProperty")
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q, err := parseRecordsQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	out, err := h.Q.ListRecords(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
			return
		}
		log.Error().Err(err).Msg("list properties failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list properties")
		return
	}
	writeCached(w, r, out, "listProperties")
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not compute stats")
		return
	}
	writeCached(w, r, st, "stats")
}

// extract runs one raw crawler record through the pipeline without storing it.
func (h *Handlers) extract(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload too large", err.Error())
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON object")
		return
	}
	if payload == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON object")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		id = "preview"
	}
	writeJSON(w, http.StatusOK, h.X.Preview(id, payload))
}

var (
	propertyTypes = map[string]bool{}
	operations    = map[string]bool{}
	statuses      = map[string]bool{}
)

func init() {
	for _, pt := range []domain.PropertyType{
		domain.PropertyHouse, domain.PropertyHouseInCondo, domain.PropertyApartment, domain.PropertyLand,
		domain.PropertyRetail, domain.PropertyOffice, domain.PropertyWarehouse, domain.PropertyOther,
	} {
		propertyTypes[string(pt)] = true
	}
	for _, op := range []domain.OperationType{domain.OperationSale, domain.OperationRent, domain.OperationUnknown} {
		operations[string(op)] = true
	}
	for _, st := range []domain.RecordStatus{domain.StatusAccepted, domain.StatusRejected} {
		statuses[string(st)] = true
	}
}

func parseRecordsQuery(r *http.Request) (domain.RecordsQuery, error) {
	v := r.URL.Query()
	q := domain.RecordsQuery{Limit: 50}

	str := func(key string, allowed map[string]bool) (*string, error) {
		s := strings.TrimSpace(v.Get(key))
		if s == "" {
			return nil, nil
		}
		if allowed != nil && !allowed[strings.ToLower(s)] {
			return nil, errors.New(key + " has an unknown value")
		}
		if allowed != nil {
			s = strings.ToLower(s)
		}
		return &s, nil
	}
	num := func(key string) (*float64, error) {
		s := strings.TrimSpace(v.Get(key))
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return nil, errors.New(key + " must be a non-negative number")
		}
		return &f, nil
	}

	var err error
	if q.City, err = str("city", nil); err != nil {
		return q, err
	}
	if q.PropertyType, err = str("type", propertyTypes); err != nil {
		return q, err
	}
	if q.Operation, err = str("operation", operations); err != nil {
		return q, err
	}
	if q.Status, err = str("status", statuses); err != nil {
		return q, err
	}
	if q.Q, err = str("q", nil); err != nil {
		return q, err
	}
	if q.Cursor, err = str("cursor", nil); err != nil {
		return q, err
	}
	if q.MinPrice, err = num("min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = num("max_price"); err != nil {
		return q, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return q, errors.New("min_price must not exceed max_price")
	}
	if ls := v.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			return q, errors.New("limit must be an integer between 1 and 200")
		}
		q.Limit = l
	}
	return q, nil
}
