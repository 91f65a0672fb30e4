package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"propiedades/internal/domain"
	"propiedades/internal/extract"
)

// Outcome kinds reported per listing.
const (
	KindAccepted     = "accepted"
	KindRejected     = "rejected"
	KindDiscarded    = "discarded"
	KindGateRejected = "gate_rejected"
	KindFailed       = "failed"
)

type IngestOptions struct {
	Workers int
	// PersistRejected stores records that failed required-field validation,
	// tagged status=rejected. When false they are only logged.
	PersistRejected bool
	// Observe, when set, is called once per processed listing.
	Observe func(kind string, out domain.Outcome)
}

type Summary struct {
	Total        int           `json:"total"`
	Accepted     int           `json:"accepted"`
	Rejected     int           `json:"rejected"`
	Discarded    int           `json:"discarded"`
	GateRejected int           `json:"gate_rejected"`
	Failed       int           `json:"failed"`
	AvgQuality   float64       `json:"avg_quality"`
	Duration     time.Duration `json:"duration"`
}

type IngestionService struct {
	source   domain.ListingSource
	repo     domain.RecordRepository
	cache    domain.Cache
	pipeline *extract.Pipeline
	opts     IngestOptions
}

func NewIngestionService(src domain.ListingSource, r domain.RecordRepository, cache domain.Cache, p *extract.Pipeline, opts IngestOptions) *IngestionService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &IngestionService{source: src, repo: r, cache: cache, pipeline: p, opts: opts}
}

// Run pulls every listing from the source and processes them with bounded
// parallelism. Per-listing failures are counted, not returned; only a source
// failure or cancellation aborts the run.
func (s *IngestionService) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	listings, err := s.source.Listings(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load listings: %w", err)
	}

	// deterministic processing order
	ids := make([]string, 0, len(listings))
	for id := range listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		mu      sync.Mutex
		sum     Summary
		quality float64
		wg      sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(s.opts.Workers))

	var runErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			runErr = err
			break
		}
		wg.Add(1)
		go func(id string, payload map[string]any) {
			defer wg.Done()
			defer sem.Release(1)

			kind, out := s.ingestOne(ctx, id, payload)

			mu.Lock()
			defer mu.Unlock()
			sum.Total++
			switch kind {
			case KindAccepted:
				sum.Accepted++
				quality += out.Record.Quality.Total
			case KindRejected:
				sum.Rejected++
			case KindDiscarded:
				sum.Discarded++
			case KindGateRejected:
				sum.GateRejected++
			default:
				sum.Failed++
			}
		}(id, listings[id])
	}
	wg.Wait()

	if sum.Accepted > 0 {
		sum.AvgQuality = quality / float64(sum.Accepted)
	}
	sum.Duration = time.Since(start)

	// aggregate views changed as a whole
	if s.cache != nil {
		s.invalidateAggregates(ctx)
	}
	return sum, runErr
}

func (s *IngestionService) ingestOne(ctx context.Context, id string, payload map[string]any) (string, domain.Outcome) {
	out := s.pipeline.Process(ToRawListing(id, payload))
	kind, err := s.persist(ctx, out)
	if err != nil {
		log.Warn().Str("id", id).Err(err).Msg("ingest failed")
		kind = KindFailed
	}
	switch kind {
	case KindAccepted:
		log.Info().Str("id", id).Float64("quality", out.Record.Quality.Total).Msg("listing accepted")
	case KindRejected, KindDiscarded:
		log.Warn().Str("id", id).Str("outcome", kind).Strs("reasons", out.Record.ValidationErrors).Msg("listing rejected")
	case KindGateRejected:
		log.Info().Str("id", id).Strs("reasons", out.Rejection.Reasons).Msg("not a property listing")
	}
	if s.opts.Observe != nil {
		s.opts.Observe(kind, out)
	}
	return kind, out
}

func (s *IngestionService) persist(ctx context.Context, out domain.Outcome) (string, error) {
	if out.Rejection != nil {
		if err := s.repo.LogRejection(ctx, *out.Rejection); err != nil {
			return KindFailed, fmt.Errorf("log rejection %s: %w", out.Rejection.ID, err)
		}
		return KindGateRejected, nil
	}

	rec := out.Record
	kind := KindAccepted
	if !rec.Valid() {
		if !s.opts.PersistRejected {
			return KindDiscarded, nil
		}
		kind = KindRejected
	}
	if err := s.repo.UpsertRecord(ctx, *rec); err != nil {
		return KindFailed, fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	if s.cache != nil {
		s.invalidateRecord(ctx, rec.ID)
	}
	return kind, nil
}

// Preview runs the pipeline on a single payload without persisting anything.
func (s *IngestionService) Preview(id string, payload map[string]any) domain.Outcome {
	return s.pipeline.Process(ToRawListing(id, payload))
}

func (s *IngestionService) invalidateRecord(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, recordKey(id))
}

// invalidate the stats snapshot and the unfiltered list pages
func (s *IngestionService) invalidateAggregates(ctx context.Context) {
	_ = s.cache.Del(ctx, statsKey)
	for _, lim := range []int{defaultListLimit, 100, maxListLimit} {
		_ = s.cache.Del(ctx, listKey(lim))
	}
}
