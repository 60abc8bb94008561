package boltstore

import (
	"bytes"
	"context"

	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xerrors"
	"go.etcd.io/bbolt"
)

// store is an implementation of [filestore.BinaryStore] that persists to a
// bucket within a BoltDB database.
type store struct {
	DB     *bbolt.DB
	Bucket []byte
}

// New returns a [filestore.BinaryStore] that persists entries to the bucket
// with the given name within db.
//
// The bucket is created when the first entry is stored.
func New(db *bbolt.DB, bucket string) filestore.BinaryStore {
	if bucket == "" {
		panic("bucket name must not be empty")
	}

	return &store{
		DB:     db,
		Bucket: []byte(bucket),
	}
}

// List returns the keys of the entries in the store, in no particular order.
func (s *store) List(ctx context.Context) (_ []string, err error) {
	defer xerrors.Wrap(&err, "unable to list keys in the %q bucket", s.Bucket)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string

	if err := s.DB.View(
		func(tx *bbolt.Tx) error {
			b := tx.Bucket(s.Bucket)
			if b == nil {
				return nil
			}

			return b.ForEach(
				func(k, _ []byte) error {
					keys = append(keys, string(k))
					return nil
				},
			)
		},
	); err != nil {
		return nil, err
	}

	return keys, nil
}

// Load returns the value associated with the given key.
func (s *store) Load(ctx context.Context, k string) (_ []byte, err error) {
	defer xerrors.Wrap(&err, "unable to load the value associated with the %q key", k)

	if err := filestore.ValidateKey(k); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v []byte

	if err := s.DB.View(
		func(tx *bbolt.Tx) error {
			b := tx.Bucket(s.Bucket)
			if b == nil {
				return filestore.KeyNotFoundError{Key: k}
			}

			// Get() cannot distinguish a missing key from an empty value, so
			// seek to the key instead.
			key, value := b.Cursor().Seek([]byte(k))
			if !bytes.Equal(key, []byte(k)) {
				return filestore.KeyNotFoundError{Key: k}
			}

			v = bytes.Clone(value)

			return nil
		},
	); err != nil {
		return nil, err
	}

	return v, nil
}

// Store associates a value with the given key, replacing any existing value.
func (s *store) Store(ctx context.Context, k string, v []byte) (err error) {
	defer xerrors.Wrap(&err, "unable to store the value associated with the %q key", k)

	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.DB.Update(
		func(tx *bbolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists(s.Bucket)
			if err != nil {
				return err
			}

			return b.Put([]byte(k), v)
		},
	)
}

// LoadAll returns every entry in the store, in no particular order.
func (s *store) LoadAll(ctx context.Context) (_ []filestore.BinaryEntry, err error) {
	defer xerrors.Wrap(&err, "unable to load the entries in the %q bucket", s.Bucket)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []filestore.BinaryEntry

	if err := s.DB.View(
		func(tx *bbolt.Tx) error {
			b := tx.Bucket(s.Bucket)
			if b == nil {
				return nil
			}

			return b.ForEach(
				func(k, v []byte) error {
					entries = append(
						entries,
						filestore.BinaryEntry{
							Key:   string(k),
							Value: bytes.Clone(v),
						},
					)
					return nil
				},
			)
		},
	); err != nil {
		return nil, err
	}

	return entries, nil
}

// StoreAll stores each of the given entries, in order.
func (s *store) StoreAll(ctx context.Context, entries []filestore.BinaryEntry) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

// Remove removes the entry associated with the given key.
func (s *store) Remove(ctx context.Context, k string) (err error) {
	defer xerrors.Wrap(&err, "unable to remove the entry associated with the %q key", k)

	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.DB.Update(
		func(tx *bbolt.Tx) error {
			b := tx.Bucket(s.Bucket)
			if b == nil {
				return filestore.KeyNotFoundError{Key: k}
			}

			c := b.Cursor()

			key, _ := c.Seek([]byte(k))
			if !bytes.Equal(key, []byte(k)) {
				return filestore.KeyNotFoundError{Key: k}
			}

			return c.Delete()
		},
	)
}
