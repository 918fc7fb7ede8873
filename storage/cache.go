package storage

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cosmocode/sheetauth/storage/model"
)

const (
	defaultSnapshotTTL = 5 * time.Minute
	defaultSchemaTTL   = time.Hour
)

// PurgeFunc reports an externally requested cache purge, for example a host
// request flag. A nil PurgeFunc never purges.
type PurgeFunc func() bool

// Cache owns the in-memory directory snapshot and decides when it is stale.
// It moves through Empty, Populated and Stale states: Get refreshes from the
// remote sheet when the slot is empty, the snapshot has aged past the TTL, a
// purge was requested or a refresh is forced; Invalidate drops back to Empty
// and must be called after every successful remote write. The slot store may
// persist snapshots across restarts; staleness is always re-decided from the
// snapshot's creation time.
type Cache struct {
	mu      sync.Mutex
	gateway model.TableGateway
	slot    SlotStore

	ttl       time.Duration
	schemaTTL time.Duration
	purge     PurgeFunc
	now       func() time.Time

	current *model.DirectorySnapshot
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets the maximum snapshot age before a refresh is forced.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSchemaTTL sets the independent maximum age of the cached
// schema-validation result.
func WithSchemaTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.schemaTTL = ttl
		}
	}
}

// WithPurgeCheck wires the externally supplied purge flag source.
func WithPurgeCheck(f PurgeFunc) CacheOption {
	return func(c *Cache) {
		c.purge = f
	}
}

// WithClock replaces the time source; used by tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache over the passed gateway and slot store.
func NewCache(gateway model.TableGateway, slot SlotStore, opts ...CacheOption) *Cache {
	c := &Cache{
		gateway:   gateway,
		slot:      slot,
		ttl:       defaultSnapshotTTL,
		schemaTTL: defaultSchemaTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot. When the cache is empty or stale, when a
// purge was requested, or when forceRefresh is set, the sheet is re-read in
// full and the snapshot is replaced atomically; otherwise the existing
// snapshot is returned unchanged.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (*model.DirectorySnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !forceRefresh && !c.purgeRequested() {
		if snap := c.load(); snap != nil && snap.Age(c.now()) <= c.ttl {
			return snap, nil
		}
	}
	return c.refresh(ctx)
}

// Invalidate unconditionally discards the snapshot, including the persisted
// copy, so the next Get observes the remote state. Failure to clear the
// persisted slot is not fatal; it only costs one extra remote read later.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	if err := c.slot.Remove(); err != nil {
		log.WithError(err).Warn("could not remove persisted directory snapshot")
	}
	if err := c.slot.RemoveFlag(); err != nil {
		log.WithError(err).Warn("could not remove persisted schema flag")
	}
}

// SchemaValid reports whether the sheet's header row covers all required
// columns. The result is cached in its own slot with its own TTL, since
// schema changes are much rarer than data changes. A header that fails
// validation yields false, not an error; errors are reserved for remote
// failures.
func (c *Cache) SchemaValid(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.purgeRequested() {
		if valid, at, ok, err := c.slot.RetrieveFlag(); err == nil && ok && c.now().Sub(at) <= c.schemaTTL {
			return valid, nil
		} else if err != nil {
			log.WithError(err).Warn("could not read persisted schema flag")
		}
	}
	header, err := c.gateway.ReadHeader(ctx)
	if err != nil {
		return false, err
	}
	_, schemaErr := model.ParseSchema(header)
	valid := schemaErr == nil
	if !valid {
		log.WithError(schemaErr).Warn("auth sheet header failed validation")
	}
	if err := c.slot.StoreFlag(valid, c.now()); err != nil {
		log.WithError(err).Warn("could not persist schema flag")
	}
	return valid, nil
}

func (c *Cache) purgeRequested() bool {
	return c.purge != nil && c.purge()
}

// load returns the in-memory snapshot, falling back to the persisted slot
// after a restart. Must be called with the mutex held.
func (c *Cache) load() *model.DirectorySnapshot {
	if c.current != nil {
		return c.current
	}
	snap, err := c.slot.Retrieve()
	if err != nil {
		log.WithError(err).Warn("could not read persisted directory snapshot")
		return nil
	}
	c.current = snap
	return snap
}

// refresh performs the full read-map-decode pass and publishes the new
// snapshot. Must be called with the mutex held.
func (c *Cache) refresh(ctx context.Context) (*model.DirectorySnapshot, error) {
	rows, err := c.gateway.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := model.BuildSnapshot(rows, c.now())
	if err != nil {
		return nil, err
	}
	if err := c.slot.Store(snap); err != nil {
		log.WithError(err).Warn("could not persist directory snapshot")
	}
	c.current = snap
	log.WithField("users", len(snap.Users)).Debug("refreshed directory snapshot")
	return snap, nil
}
