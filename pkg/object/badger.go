package object

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerBackend keeps objects in a badger key/value database, one key per
// hash. It trades the loose layout's one-file-per-object for a single
// log-structured store.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadgerBackend opens (or creates) a badger database in dir. An empty
// dir opens an in-memory database.
func OpenBadgerBackend(dir string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(h Hash) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(h))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("badger read: %w", ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger read: %w", err)
	}
	return data, nil
}

func (b *BadgerBackend) Put(h Hash, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(h)); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(h), data)
	})
	if err != nil {
		return fmt.Errorf("badger write: %w", err)
	}
	return nil
}

func (b *BadgerBackend) Has(h Hash) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(h))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger has: %w", err)
	}
	return true, nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
