package storage

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cosmocode/sheetauth/storage/model"
)

const (
	snapshotKey = "directory/snapshot"
	flagKey     = "directory/schema_ok"
)

// BadgerSlotStore persists the snapshot and flag slots in a local badger
// database so a populated cache survives restarts. Staleness is still decided
// from the snapshot's creation time, never from the file's presence.
type BadgerSlotStore struct {
	db *badger.DB
}

// NewBadgerSlotStore opens (or creates) the badger database at the passed
// directory.
func NewBadgerSlotStore(dir string) (*BadgerSlotStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open badger database at '%s'", dir)
	}
	return &BadgerSlotStore{db: db}, nil
}

// Store replaces the snapshot slot with the msgpack-serialized snapshot.
func (s *BadgerSlotStore) Store(snap *model.DirectorySnapshot) error {
	return s.write(snapshotKey, snap)
}

// Retrieve returns the stored snapshot or (nil, nil) when the slot is empty.
func (s *BadgerSlotStore) Retrieve() (*model.DirectorySnapshot, error) {
	var snap model.DirectorySnapshot
	found, err := s.read(snapshotKey, &snap)
	if err != nil || !found {
		return nil, err
	}
	return &snap, nil
}

// Remove empties the snapshot slot.
func (s *BadgerSlotStore) Remove() error {
	return s.delete(snapshotKey)
}

type persistedFlag struct {
	Value bool      `msgpack:"value"`
	At    time.Time `msgpack:"at"`
}

// StoreFlag replaces the schema flag slot.
func (s *BadgerSlotStore) StoreFlag(value bool, at time.Time) error {
	return s.write(flagKey, persistedFlag{Value: value, At: at})
}

// RetrieveFlag returns the stored schema flag.
func (s *BadgerSlotStore) RetrieveFlag() (bool, time.Time, bool, error) {
	var f persistedFlag
	found, err := s.read(flagKey, &f)
	if err != nil || !found {
		return false, time.Time{}, false, err
	}
	return f.Value, f.At, true, nil
}

// RemoveFlag empties the schema flag slot.
func (s *BadgerSlotStore) RemoveFlag() error {
	return s.delete(flagKey)
}

// Close releases the badger database.
func (s *BadgerSlotStore) Close() error {
	return s.db.Close()
}

// write serializes a value to the database
func (s *BadgerSlotStore) write(key string, value any) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(
		func(txn *badger.Txn) error {
			return txn.Set([]byte(key), data)
		},
	)
}

// read deserializes a value from the database; found is false when the key
// does not exist
func (s *BadgerSlotStore) read(key string, target any) (found bool, err error) {
	err = s.db.View(
		func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return nil
				}
				return err
			}
			found = true
			return item.Value(
				func(val []byte) error {
					return msgpack.Unmarshal(val, target)
				},
			)
		},
	)
	return
}

// delete removes a key; no error when it is missing
func (s *BadgerSlotStore) delete(key string) error {
	return s.db.Update(
		func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		},
	)
}
