package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// KeyNotFoundError indicates that a store has no entry associated with a
// requested key.
type KeyNotFoundError struct {
	// Key is the key that was requested.
	Key string

	// Cause is the driver-specific error that identified the key as missing,
	// if any.
	Cause error
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("no entry associated with the %q key", e.Key)
}

// Unwrap returns the driver-specific cause of the error, which may be nil.
func (e KeyNotFoundError) Unwrap() error {
	return e.Cause
}

// Is returns true if target is [fs.ErrNotExist]. errors.Is reports a
// missing entry as fs.ErrNotExist on every driver.
func (e KeyNotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// InvalidKeyError indicates that a key cannot be used with any store because
// it is not usable as a single path segment.
type InvalidKeyError struct {
	// Key is the offending key.
	Key string

	// Reason describes the constraint that the key violates.
	Reason string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}

// CodecError indicates that an entry's value could not be marshaled for
// storage, or that a stored value could not be unmarshaled.
//
// It is never produced by a [BinaryStore]; it originates in the marshaling
// layer added by [NewMarshalingStore].
type CodecError struct {
	// Key is the key of the entry that was being marshaled or unmarshaled.
	Key string

	// Cause is the underlying marshaling error.
	Cause error
}

func (e CodecError) Error() string {
	return fmt.Sprintf("unable to marshal or unmarshal the value associated with the %q key: %s", e.Key, e.Cause)
}

// Unwrap returns the underlying marshaling error.
func (e CodecError) Unwrap() error {
	return e.Cause
}

// ValidateKey returns an [InvalidKeyError] if k cannot be used as a key.
//
// A key must be usable verbatim as a single path segment. It must not be
// empty, must not contain a path separator or a NUL byte, and must not be
// "." or "..".
func ValidateKey(k string) error {
	switch {
	case k == "":
		return InvalidKeyError{k, "keys must not be empty"}
	case k == "." || k == "..":
		return InvalidKeyError{k, `"." and ".." are reserved`}
	case strings.ContainsAny(k, `/\`):
		return InvalidKeyError{k, "keys must not contain path separators"}
	case strings.ContainsRune(k, 0):
		return InvalidKeyError{k, "keys must not contain NUL bytes"}
	default:
		return nil
	}
}

// IsNotFound returns true if err indicates that an entry could not be found.
func IsNotFound(err error) bool {
	return errors.As(err, &KeyNotFoundError{})
}

// IgnoreNotFound returns nil if err indicates that an entry could not be
// found, otherwise it returns err.
func IgnoreNotFound(err error) error {
	if IsNotFound(err) {
		return nil
	}
	return err
}

// IsCodec returns true if err indicates that a value could not be marshaled
// or unmarshaled, as opposed to a failure of the underlying storage.
func IsCodec(err error) bool {
	return errors.As(err, &CodecError{})
}
