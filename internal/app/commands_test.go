package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"propiedades/internal/app"
	"propiedades/internal/domain"
	"propiedades/internal/extract"
	"propiedades/internal/gazetteer"
)

type fakeSource struct {
	listings map[string]map[string]any
	err      error
}

func (f *fakeSource) Listings(ctx context.Context) (map[string]map[string]any, error) {
	return f.listings, f.err
}

func newPipeline(t *testing.T) *extract.Pipeline {
	t.Helper()
	g, err := gazetteer.Default()
	if err != nil {
		t.Fatalf("gazetteer: %v", err)
	}
	return extract.NewPipeline(g, extract.DefaultOptions())
}

var batch = map[string]map[string]any{
	"house": {
		"titulo":      "Casa en venta",
		"descripcion": "Casa en venta, 3 recámaras, 2 baños, 200 m2 de terreno, colonia Reforma",
		"precio":      "$2,500,000",
		"ciudad":      "Cuernavaca",
	},
	"flat": {
		"title":       "Depto en renta",
		"description": "Depto en renta $8,500/mes, 2 recámaras, cerca de Plaza Cuernavaca",
	},
	"incomplete": {
		"title":       "Casa en venta",
		"description": "Excelente ubicación, 3 recámaras, informes por mensaje",
	},
	"phone": {
		"title": "iPhone 12 en venta, $5,000",
	},
}

func TestIngestionService_Run(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	var mu sync.Mutex
	seen := map[string]string{}
	ing := app.NewIngestionService(&fakeSource{listings: batch}, repo, cache, newPipeline(t), app.IngestOptions{
		Workers: 3,
		Observe: func(kind string, out domain.Outcome) {
			mu.Lock()
			defer mu.Unlock()
			if out.Record != nil {
				seen[out.Record.ID] = kind
			} else {
				seen[out.Rejection.ID] = kind
			}
		},
	})

	sum, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.Total != 4 || sum.Accepted != 2 || sum.Discarded != 1 || sum.GateRejected != 1 || sum.Failed != 0 {
		t.Fatalf("summary: %+v", sum)
	}
	if sum.AvgQuality <= 0 {
		t.Fatalf("avg quality: %v", sum.AvgQuality)
	}
	if len(repo.upserted) != 2 || len(repo.rejections) != 1 || repo.rejections[0].ID != "phone" {
		t.Fatalf("persisted %d records, %d rejections", len(repo.upserted), len(repo.rejections))
	}
	if seen["incomplete"] != app.KindDiscarded || seen["phone"] != app.KindGateRejected || seen["house"] != app.KindAccepted {
		t.Fatalf("observed kinds: %v", seen)
	}

	// record caches evicted per id, aggregates once at the end
	evicted := map[string]bool{}
	for _, k := range cache.dels {
		evicted[k] = true
	}
	for _, k := range []string{"record:house", "record:flat", "stats", "records:50"} {
		if !evicted[k] {
			t.Fatalf("cache key %q not invalidated (dels=%v)", k, cache.dels)
		}
	}
}

func TestIngestionService_PersistRejected(t *testing.T) {
	repo := &fakeRepo{}
	ing := app.NewIngestionService(&fakeSource{listings: batch}, repo, &fakeCache{}, newPipeline(t), app.IngestOptions{
		Workers:         2,
		PersistRejected: true,
	})
	sum, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.Rejected != 1 || sum.Discarded != 0 || len(repo.upserted) != 3 {
		t.Fatalf("summary %+v, upserted %d", sum, len(repo.upserted))
	}
	for _, r := range repo.upserted {
		if r.ID == "incomplete" && r.Status != domain.StatusRejected {
			t.Fatalf("rejected record stored as %s", r.Status)
		}
	}
}

func TestIngestionService_StorageFailureIsCounted(t *testing.T) {
	repo := &fakeRepo{failUpsert: errors.New("db down")}
	ing := app.NewIngestionService(&fakeSource{listings: batch}, repo, nil, newPipeline(t), app.IngestOptions{Workers: 1})
	sum, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("per-listing failures must not abort the run: %v", err)
	}
	if sum.Failed != 2 || sum.GateRejected != 1 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestIngestionService_SourceError(t *testing.T) {
	boom := errors.New("feed unavailable")
	ing := app.NewIngestionService(&fakeSource{err: boom}, &fakeRepo{}, nil, newPipeline(t), app.IngestOptions{})
	if _, err := ing.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want wrapped source error, got %v", err)
	}
}

func TestIngestionService_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ing := app.NewIngestionService(&fakeSource{listings: batch}, &fakeRepo{}, nil, newPipeline(t), app.IngestOptions{Workers: 1})
	sum, err := ing.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if sum.Total != 0 {
		t.Fatalf("nothing should have been processed: %+v", sum)
	}
}

func TestIngestionService_Preview(t *testing.T) {
	repo := &fakeRepo{}
	ing := app.NewIngestionService(nil, repo, nil, newPipeline(t), app.IngestOptions{})
	out := ing.Preview("p1", batch["flat"])
	if out.Record == nil || out.Record.ID != "p1" || !out.Record.Valid() {
		t.Fatalf("preview: %+v", out)
	}
	if len(repo.upserted) != 0 {
		t.Fatalf("preview must not persist")
	}
}
