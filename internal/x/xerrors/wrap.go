package xerrors

import (
	"errors"
	"fmt"

	"github.com/dogmatiq/filekit/filestore"
)

// Wrap adds additional context to an error.
//
// Errors that already identify the key they relate to, such as
// [filestore.KeyNotFoundError] and [filestore.InvalidKeyError], are left
// unchanged.
func Wrap(err *error, format string, args ...any) {
	if err == nil {
		panic("err must not be nil")
	}

	if *err == nil {
		return
	}

	if filestore.IsNotFound(*err) {
		return
	}

	if errors.As(*err, &filestore.InvalidKeyError{}) {
		return
	}

	*err = fmt.Errorf(format+": %w", append(args, *err)...)
}
