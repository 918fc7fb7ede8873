package storage

import (
	"context"
	"testing"
	"time"

	"github.com/cosmocode/sheetauth/storage/model"
)

// fakeGateway replays a fixed sheet and counts remote calls.
type fakeGateway struct {
	rows        [][]string
	readErr     error
	reads       int
	headerReads int
}

func (g *fakeGateway) ReadAll(ctx context.Context) ([][]string, error) {
	g.reads++
	if g.readErr != nil {
		return nil, g.readErr
	}
	return g.rows, nil
}

func (g *fakeGateway) ReadHeader(ctx context.Context) ([]string, error) {
	g.headerReads++
	if g.readErr != nil {
		return nil, g.readErr
	}
	if len(g.rows) == 0 {
		return nil, nil
	}
	return g.rows[0], nil
}

func (g *fakeGateway) AppendRow(ctx context.Context, cells []string) error            { return nil }
func (g *fakeGateway) BatchUpdateCells(ctx context.Context, edits []model.CellEdit) error { return nil }
func (g *fakeGateway) BatchDeleteRows(ctx context.Context, rows []int) error          { return nil }
func (g *fakeGateway) AppendAudit(ctx context.Context, ev model.AuditEvent) error     { return nil }

func fakeSheet() [][]string {
	return [][]string{
		{"user", "pass", "name", "mail", "grps"},
		{"hans", "hash", "Hans Wurst", "hans@example.com", "user"},
	}
}

// testClock is a manually advanced time source
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestCache(gateway *fakeGateway, clock *testClock) *Cache {
	return NewCache(
		gateway, NewMemorySlotStore(),
		WithTTL(5*time.Minute),
		WithSchemaTTL(time.Hour),
		WithClock(clock.Now),
	)
}

// TestCacheGetServesFromSnapshot tests that repeated reads within the TTL hit
// the sheet exactly once
func TestCacheGetServesFromSnapshot(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	for i := 0; i < 3; i++ {
		snap, err := cache.Get(context.Background(), false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(snap.Users) != 1 {
			t.Fatalf("Got %d users, want 1", len(snap.Users))
		}
	}
	if gateway.reads != 1 {
		t.Errorf("Sheet was read %d times, want 1", gateway.reads)
	}
}

// TestCacheGetRefreshesAfterTTL tests that an aged snapshot is replaced
func TestCacheGetRefreshesAfterTTL(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	clock.now = clock.now.Add(6 * time.Minute)
	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gateway.reads != 2 {
		t.Errorf("Sheet was read %d times, want 2", gateway.reads)
	}
}

// TestCacheGetForceRefresh tests that a forced refresh bypasses a fresh
// snapshot
func TestCacheGetForceRefresh(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := cache.Get(context.Background(), true); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gateway.reads != 2 {
		t.Errorf("Sheet was read %d times, want 2", gateway.reads)
	}
}

// TestCachePurgeCheck tests that an externally requested purge forces a
// refresh even while the snapshot is fresh
func TestCachePurgeCheck(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	purge := false
	cache := NewCache(
		gateway, NewMemorySlotStore(),
		WithTTL(5*time.Minute),
		WithClock(clock.Now),
		WithPurgeCheck(func() bool { return purge }),
	)

	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	purge = true
	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gateway.reads != 2 {
		t.Errorf("Sheet was read %d times, want 2", gateway.reads)
	}
}

// TestCacheInvalidate tests that an invalidated cache re-reads the sheet and
// clears the persisted slot
func TestCacheInvalidate(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	slot := NewMemorySlotStore()
	cache := NewCache(gateway, slot, WithTTL(5*time.Minute), WithClock(clock.Now))

	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	cache.Invalidate()
	if snap, _ := slot.Retrieve(); snap != nil {
		t.Error("Invalidate must clear the persisted snapshot slot")
	}
	if _, err := cache.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gateway.reads != 2 {
		t.Errorf("Sheet was read %d times, want 2", gateway.reads)
	}
}

// TestCachePersistedSnapshot tests that a fresh persisted snapshot is reused
// after a restart without hitting the sheet
func TestCachePersistedSnapshot(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	slot := NewMemorySlotStore()

	first := NewCache(gateway, slot, WithTTL(5*time.Minute), WithClock(clock.Now))
	if _, err := first.Get(context.Background(), false); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	second := NewCache(gateway, slot, WithTTL(5*time.Minute), WithClock(clock.Now))
	snap, err := second.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(snap.Users) != 1 {
		t.Fatalf("Got %d users, want 1", len(snap.Users))
	}
	if gateway.reads != 1 {
		t.Errorf("Sheet was read %d times, want 1", gateway.reads)
	}
}

// TestCacheGetReadFailure tests that a failed refresh propagates the remote
// error
func TestCacheGetReadFailure(t *testing.T) {
	gateway := &fakeGateway{readErr: model.RemoteUnavailableErrorFmt("down")}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	if _, err := cache.Get(context.Background(), false); err == nil {
		t.Fatal("Expected the remote error to propagate")
	}
}

// TestCacheSchemaValid tests that the schema check is cached with its own TTL
func TestCacheSchemaValid(t *testing.T) {
	gateway := &fakeGateway{rows: fakeSheet()}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	for i := 0; i < 2; i++ {
		valid, err := cache.SchemaValid(context.Background())
		if err != nil {
			t.Fatalf("SchemaValid failed: %v", err)
		}
		if !valid {
			t.Fatal("Expected a valid schema")
		}
	}
	if gateway.headerReads != 1 {
		t.Errorf("Header was read %d times, want 1", gateway.headerReads)
	}

	clock.now = clock.now.Add(2 * time.Hour)
	if _, err := cache.SchemaValid(context.Background()); err != nil {
		t.Fatalf("SchemaValid failed: %v", err)
	}
	if gateway.headerReads != 2 {
		t.Errorf("Header was read %d times after the flag aged out, want 2", gateway.headerReads)
	}
}

// TestCacheSchemaInvalid tests that a broken header yields false, not an
// error
func TestCacheSchemaInvalid(t *testing.T) {
	gateway := &fakeGateway{rows: [][]string{{"user", "pass"}}}
	clock := &testClock{now: time.Now()}
	cache := newTestCache(gateway, clock)

	valid, err := cache.SchemaValid(context.Background())
	if err != nil {
		t.Fatalf("SchemaValid failed: %v", err)
	}
	if valid {
		t.Error("Expected the incomplete header to fail validation")
	}
}
