package filestore_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	. "github.com/dogmatiq/filekit/filestore"
)

func TestIgnoreNotFound(t *testing.T) {
	err := errors.New("<error>")

	cases := []struct {
		Name     string
		Err      error
		Expected error
	}{
		{
			Name:     "KeyNotFoundError",
			Err:      KeyNotFoundError{Key: "<key>"},
			Expected: nil,
		},
		{
			Name:     "wrapped KeyNotFoundError",
			Err:      fmt.Errorf("unable to load: %w", KeyNotFoundError{Key: "<key>"}),
			Expected: nil,
		},
		{
			Name:     "CodecError",
			Err:      CodecError{},
			Expected: CodecError{},
		},
		{
			Name:     "unrecognized error",
			Err:      err,
			Expected: err,
		},
		{
			Name:     "nil error",
			Err:      nil,
			Expected: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			actual := IgnoreNotFound(c.Err)
			if actual != c.Expected {
				t.Fatalf("unexpected result: got %v, want %v", actual, c.Expected)
			}
		})
	}
}

func TestKeyNotFoundError(t *testing.T) {
	err := error(KeyNotFoundError{Key: "<key>"})

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected error to match fs.ErrNotExist, got %v", err)
	}

	if !IsNotFound(fmt.Errorf("unable to load: %w", err)) {
		t.Fatalf("expected wrapped error to be recognized, got %v", err)
	}

	if IsCodec(err) {
		t.Fatalf("did not expect a codec error, got %v", err)
	}
}

func TestValidateKey(t *testing.T) {
	cases := []struct {
		Name string
		Key  string
		OK   bool
	}{
		{Name: "typical key", Key: "<key>", OK: true},
		{Name: "single character", Key: "0", OK: true},
		{Name: "leading dot", Key: ".hidden", OK: true},
		{Name: "empty", Key: "", OK: false},
		{Name: "current directory", Key: ".", OK: false},
		{Name: "parent directory", Key: "..", OK: false},
		{Name: "forward slash", Key: "nested/key", OK: false},
		{Name: "backslash", Key: `nested\key`, OK: false},
		{Name: "NUL byte", Key: "nul\x00key", OK: false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			err := ValidateKey(c.Key)

			if c.OK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var ierr InvalidKeyError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected a %T, got %v", ierr, err)
			}

			if ierr.Key != c.Key {
				t.Fatalf("unexpected key in error: got %q, want %q", ierr.Key, c.Key)
			}
		})
	}
}
