package storage

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/cosmocode/sheetauth/storage/model"
)

// BackendType represents the type of snapshot slot backend
type BackendType string

const (
	// BackendMemory keeps the snapshot slot in process memory only
	BackendMemory BackendType = "memory"
	// BackendBadger persists the snapshot slot in a local badger database
	BackendBadger BackendType = "badger"
)

// SupportedBackends lists the snapshot slot backends that can be configured
var SupportedBackends = []BackendType{
	BackendMemory,
	BackendBadger,
}

// SlotStore combines the snapshot slot and the schema flag slot; both live in
// the same backend.
type SlotStore interface {
	model.SnapshotSlot
	model.FlagSlot
	Close() error
}

// Config holds the cache configuration under the `cache` key.
type Config struct {
	// Backend selects the snapshot slot backend; defaults to memory.
	Backend BackendType `yaml:"backend"`
	// Dir is the badger database directory; required for the badger backend.
	Dir string `yaml:"dir"`
	// TTL is the maximum snapshot age before a refresh is forced.
	TTL duration.DurationOption `yaml:"ttl"`
	// SchemaTTL is the independent maximum age of the schema-validation flag.
	SchemaTTL duration.DurationOption `yaml:"schema_ttl"`
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendBadger:
		if c.Dir == "" {
			return errors.New("cache: badger backend requires a dir")
		}
		return nil
	default:
		return errors.Errorf("cache: unsupported backend '%s'", c.Backend)
	}
}

// LoadSlotStore creates the configured snapshot slot backend.
func LoadSlotStore(c Config) (SlotStore, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendBadger:
		return NewBadgerSlotStore(c.Dir)
	default:
		return NewMemorySlotStore(), nil
	}
}
