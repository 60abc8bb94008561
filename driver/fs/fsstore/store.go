package fsstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xerrors"
)

// store is an implementation of [filestore.BinaryStore] that persists each
// entry as a file within a directory.
type store struct {
	Dir    string
	Mode   fs.FileMode
	Atomic bool
}

// New returns a [filestore.BinaryStore] that persists each entry as a file
// within the given directory, named after the entry's key.
//
// The directory is not created or validated. The first operation fails if the
// directory does not exist or is inaccessible.
func New(dir string, options ...Option) filestore.BinaryStore {
	if dir == "" {
		panic("directory must not be empty")
	}

	s := &store{
		Dir:  dir,
		Mode: 0o644,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [New].
type Option func(*store)

// WithFileMode is an [Option] that sets the mode of the files that hold the
// store's values. The default is 0o644.
func WithFileMode(mode fs.FileMode) Option {
	return func(s *store) {
		s.Mode = mode
	}
}

// WithAtomicWrites is an [Option] that stages each write to a temporary file
// that is renamed into place once it is fully written. A reader never
// observes a partially written value, even if the process is interrupted
// mid-write.
//
// Staging files are created within the store's directory and may appear in
// the results of [filestore.BinaryStore.List] while a write is in progress.
func WithAtomicWrites() Option {
	return func(s *store) {
		s.Atomic = true
	}
}

// List returns the keys of the entries in the store, in no particular order.
func (s *store) List(ctx context.Context) (_ []string, err error) {
	defer xerrors.Wrap(&err, "unable to list keys in %q", s.Dir)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range dirents {
		if e.IsDir() {
			continue
		}

		keys = append(keys, e.Name())
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

	return s.read(k)
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

	return s.write(k, v)
}

// LoadAll returns every entry in the store, in no particular order.
func (s *store) LoadAll(ctx context.Context) (_ []filestore.BinaryEntry, err error) {
	defer xerrors.Wrap(&err, "unable to load the entries in %q", s.Dir)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var entries []filestore.BinaryEntry
	for _, e := range dirents {
		if e.IsDir() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := s.read(e.Name())
		if err != nil {
			return nil, err
		}

		entries = append(
			entries,
			filestore.BinaryEntry{
				Key:   e.Name(),
				Value: v,
			},
		)
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

	err = os.Remove(filepath.Join(s.Dir, k))
	if errors.Is(err, fs.ErrNotExist) {
		return filestore.KeyNotFoundError{Key: k, Cause: err}
	}

	return err
}

// read returns the contents of the file that holds the value associated with
// the given key.
func (s *store) read(k string) ([]byte, error) {
	v, err := os.ReadFile(filepath.Join(s.Dir, k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, filestore.KeyNotFoundError{Key: k, Cause: err}
	}

	return v, err
}

// write replaces the contents of the file that holds the value associated
// with the given key.
func (s *store) write(k string, v []byte) error {
	filename := filepath.Join(s.Dir, k)

	if !s.Atomic {
		return os.WriteFile(filename, v, s.Mode)
	}

	f, err := os.CreateTemp(s.Dir, ".staged-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(v); err != nil {
		f.Close()
		return err
	}

	if err := f.Chmod(s.Mode); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), filename)
}
