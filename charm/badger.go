// ABOUTME: Local BadgerDB implementation of the KV interface
// ABOUTME: Used for single-device storage and for isolated tests

package charm

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// BadgerKV stores keys in a local BadgerDB directory.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB in dir.
func OpenBadger(dir string) (*BadgerKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil) // keep badger quiet on stderr

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (b *BadgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *BadgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *BadgerKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Sync is a no-op: a local store has nothing to reconcile with.
func (b *BadgerKV) Sync() error {
	return nil
}

func (b *BadgerKV) Close() error {
	return b.db.Close()
}

// OpenLocal returns a client over a BadgerDB in dir. AutoSync is forced off.
func OpenLocal(dir string) (*Client, *BadgerKV, error) {
	bkv, err := OpenBadger(dir)
	if err != nil {
		return nil, nil, err
	}
	return NewClient(bkv, &Config{Host: "localhost", AutoSync: false}), bkv, nil
}
