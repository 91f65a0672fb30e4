package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "propiedades/internal/adapters/redis"
	"propiedades/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.PropertyRecord
	if ok, err := c.Get(ctx, "record:1", &miss); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := domain.PropertyRecord{ID: "1", Title: "Casa en Reforma", Status: domain.StatusAccepted}
	if err := c.Set(ctx, "record:1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("propiedades:record:1") {
		t.Fatalf("key not namespaced: %v", mr.Keys())
	}

	var out domain.PropertyRecord
	ok, err := c.Get(ctx, "record:1", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.ID != "1" || out.Title != "Casa en Reforma" {
		t.Fatalf("round trip: %+v", out)
	}

	if err := c.Del(ctx, "record:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "record:1", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "stats", domain.Stats{Total: 3}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)
	var st domain.Stats
	if ok, _ := c.Get(ctx, "stats", &st); ok {
		t.Fatalf("expected expiry")
	}
}

func TestCache_CorruptValueIsMiss(t *testing.T) {
	c, mr := newCache(t)
	_ = mr.Set("propiedades:stats", "{broken")
	var st domain.Stats
	ok, err := c.Get(context.Background(), "stats", &st)
	if ok || err == nil {
		t.Fatalf("want miss with decode error, got ok=%v err=%v", ok, err)
	}
}

func TestCache_Ping(t *testing.T) {
	c, mr := newCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure after server shutdown")
	}
}
