package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propiedades/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	statsKey         = "stats"
)

func recordKey(id string) string { return fmt.Sprintf("record:%s", id) }
func listKey(limit int) string   { return fmt.Sprintf("records:%d", limit) }

type QueryService struct {
	repo     domain.RecordRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RecordRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetRecord(ctx context.Context, id string) (domain.PropertyRecord, error) {
	key := recordKey(id)
	var rec domain.PropertyRecord
	if ok, _ := s.cache.Get(ctx, key, &rec); ok {
		return rec, nil
	}
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return domain.PropertyRecord{}, err
	}
	_ = s.cache.Set(ctx, key, rec, int(s.cacheTTL.Seconds()))
	return rec, nil
}

// ListRecords serves filtered pages straight from the repository; only the
// unfiltered first page is cached.
func (s *QueryService) ListRecords(ctx context.Context, q domain.RecordsQuery) (domain.RecordsPage, error) {
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if !cacheable(q) {
		return s.repo.ListRecords(ctx, q)
	}

	key := listKey(q.Limit)
	var out domain.RecordsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	page, err := s.repo.ListRecords(ctx, q)
	if err != nil {
		return domain.RecordsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := domain.RecordsPage{NextCursor: page.NextCursor}
	if n := len(page.Items); n > 0 {
		cp.Items = make([]domain.PropertyRecord, n)
		copy(cp.Items, page.Items)
	}

	// optional size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	if ok, _ := s.cache.Get(ctx, statsKey, &st); ok {
		return st, nil
	}
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	_ = s.cache.Set(ctx, statsKey, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

func cacheable(q domain.RecordsQuery) bool {
	return q.City == nil && q.PropertyType == nil && q.Operation == nil && q.Status == nil &&
		q.MinPrice == nil && q.MaxPrice == nil && q.Q == nil && q.Cursor == nil
}
