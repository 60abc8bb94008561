package filestore_test

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/dogmatiq/filekit/driver/memory/memorystore"
	. "github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/marshaler"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/durationpb"
)

type widget struct {
	Name  string
	Count int
}

func TestMarshalingStore(t *testing.T) {
	store := NewMarshalingStore(
		&memorystore.Store{},
		marshaler.NewJSON[widget](),
	)

	entries := []Entry[widget]{
		{Key: "0", Value: widget{Name: "zero"}},
		{Key: "1", Value: widget{Name: "one", Count: 1}},
		{Key: "2", Value: widget{Name: "two", Count: 2}},
	}

	if err := store.StoreAll(t.Context(), entries); err != nil {
		t.Fatal(err)
	}

	for _, want := range entries {
		got, err := store.Load(t.Context(), want.Key)
		if err != nil {
			t.Fatal(err)
		}

		if got != want.Value {
			t.Fatalf("unexpected value for key %q: got %#v, want %#v", want.Key, got, want.Value)
		}
	}

	loaded, err := store.LoadAll(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]widget{}
	for _, e := range loaded {
		got[e.Key] = e.Value
	}

	want := map[string]widget{}
	for _, e := range entries {
		want[e.Key] = e.Value
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%s", diff)
	}

	if err := store.Remove(t.Context(), "1"); err != nil {
		t.Fatal(err)
	}

	_, err = store.Load(t.Context(), "1")
	if !IsNotFound(err) {
		t.Fatalf("expected a key-not-found error, got %v", err)
	}
}

func TestMarshalingStore_unmarshalingFailure(t *testing.T) {
	binary := &memorystore.Store{}

	store := NewMarshalingStore(
		binary,
		marshaler.NewJSON[widget](),
	)

	if err := store.Store(t.Context(), "0", widget{Name: "zero"}); err != nil {
		t.Fatal(err)
	}

	// Clobber the second entry with bytes that are not valid JSON.
	if err := binary.Store(t.Context(), "1", []byte("{")); err != nil {
		t.Fatal(err)
	}

	t.Run("it reports a codec error when loading the corrupted entry", func(t *testing.T) {
		_, err := store.Load(t.Context(), "1")

		if !IsCodec(err) {
			t.Fatalf("expected a codec error, got %v", err)
		}

		if IsNotFound(err) {
			t.Fatalf("did not expect a key-not-found error, got %v", err)
		}

		var cerr CodecError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected a %T, got %v", cerr, err)
		}

		if cerr.Key != "1" {
			t.Fatalf("unexpected key in codec error: got %q, want %q", cerr.Key, "1")
		}
	})

	t.Run("it loads intact entries normally", func(t *testing.T) {
		got, err := store.Load(t.Context(), "0")
		if err != nil {
			t.Fatal(err)
		}

		if want := (widget{Name: "zero"}); got != want {
			t.Fatalf("unexpected value: got %#v, want %#v", got, want)
		}
	})

	t.Run("it returns no entries from LoadAll when any entry is corrupted", func(t *testing.T) {
		entries, err := store.LoadAll(t.Context())

		if !IsCodec(err) {
			t.Fatalf("expected a codec error, got %v", err)
		}

		if entries != nil {
			t.Fatalf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("it distinguishes a missing key from a corrupted entry", func(t *testing.T) {
		_, err := store.Load(t.Context(), "<unknown>")

		if !IsNotFound(err) {
			t.Fatalf("expected a key-not-found error, got %v", err)
		}

		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected error to match fs.ErrNotExist, got %v", err)
		}

		if IsCodec(err) {
			t.Fatalf("did not expect a codec error, got %v", err)
		}
	})
}

func TestMarshalingStore_marshalingFailure(t *testing.T) {
	failure := errors.New("<error>")

	m := marshaler.New(
		func(v widget) ([]byte, error) {
			if v.Count < 0 {
				return nil, failure
			}
			return []byte(v.Name), nil
		},
		func(data []byte) (widget, error) {
			return widget{Name: string(data)}, nil
		},
	)

	binary := &memorystore.Store{}
	store := NewMarshalingStore(binary, m)

	t.Run("it reports a codec error when storing an unmarshalable value", func(t *testing.T) {
		err := store.Store(t.Context(), "0", widget{Count: -1})

		if !IsCodec(err) {
			t.Fatalf("expected a codec error, got %v", err)
		}

		if !errors.Is(err, failure) {
			t.Fatalf("expected error to match the marshaler's error, got %v", err)
		}
	})

	t.Run("it stores the entries that precede an unmarshalable value", func(t *testing.T) {
		err := store.StoreAll(
			t.Context(),
			[]Entry[widget]{
				{Key: "0", Value: widget{Name: "zero"}},
				{Key: "1", Value: widget{Count: -1}},
				{Key: "2", Value: widget{Name: "two"}},
			},
		)

		if !IsCodec(err) {
			t.Fatalf("expected a codec error, got %v", err)
		}

		if _, err := binary.Load(t.Context(), "0"); err != nil {
			t.Fatalf("expected the preceding entry to be stored: %v", err)
		}

		if _, err := binary.Load(t.Context(), "2"); !IsNotFound(err) {
			t.Fatalf("expected the subsequent entry not to be stored, got %v", err)
		}
	})
}

func TestMarshalingStore_emptyEncoding(t *testing.T) {
	binary := &memorystore.Store{}

	store := NewMarshalingStore(
		binary,
		marshaler.Convert[string](),
	)

	if err := store.Store(t.Context(), "<key>", ""); err != nil {
		t.Fatal(err)
	}

	keys, err := binary.List(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 1 || keys[0] != "<key>" {
		t.Fatalf("expected the entry to exist with an empty value, got keys %q", keys)
	}

	got, err := store.Load(t.Context(), "<key>")
	if err != nil {
		t.Fatal(err)
	}

	if got != "" {
		t.Fatalf("unexpected value: got %q, want %q", got, "")
	}
}

func TestMarshalingStoreWithProto(t *testing.T) {
	store := NewMarshalingStore(
		&memorystore.Store{},
		marshaler.NewProto[*durationpb.Duration](),
	)

	want := durationpb.New(90 * time.Second)

	if err := store.Store(t.Context(), "<key>", want); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(t.Context(), "<key>")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}
