package marshaler_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/dogmatiq/filekit/marshaler"
)

type record struct {
	Name   string
	Count  int
	Labels []string
}

func TestNew(t *testing.T) {
	failure := errors.New("<error>")

	m := New(
		func(v record) ([]byte, error) {
			if v.Name == "" {
				return nil, failure
			}
			return []byte(v.Name), nil
		},
		func(data []byte) (record, error) {
			return record{Name: string(data)}, nil
		},
	)

	data, err := m.Marshal(record{Name: "<name>"})
	if err != nil {
		t.Fatal(err)
	}

	v, err := m.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if v.Name != "<name>" {
		t.Fatalf("unexpected name: got %q, want %q", v.Name, "<name>")
	}

	if _, err := m.Marshal(record{}); err != failure {
		t.Fatalf("unexpected error: got %v, want %v", err, failure)
	}
}

func TestNewJSON(t *testing.T) {
	m := NewJSON[record]()

	want := record{
		Name:   "<name>",
		Count:  3,
		Labels: []string{"<a>", "<b>"},
	}

	data, err := m.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != want.Name || got.Count != want.Count {
		t.Fatalf("unexpected value: got %#v, want %#v", got, want)
	}

	if _, err := m.Unmarshal([]byte("{")); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestNewMsgpack(t *testing.T) {
	m := NewMsgpack[record]()

	want := record{
		Name:  "<name>",
		Count: 3,
	}

	data, err := m.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != want.Name || got.Count != want.Count {
		t.Fatalf("unexpected value: got %#v, want %#v", got, want)
	}

	if _, err := m.Unmarshal([]byte{0xc1}); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestNewYAML(t *testing.T) {
	m := NewYAML[record]()

	// Values must be loadable from documents edited by hand.
	doc := strings.Join(
		[]string{
			"name: <name>",
			"count: 3",
			"labels:",
			"  - <a>",
			"  - <b>",
		},
		"\n",
	)

	got, err := m.Unmarshal([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != "<name>" || got.Count != 3 || len(got.Labels) != 2 {
		t.Fatalf("unexpected value: %#v", got)
	}

	data, err := m.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}

	again, err := m.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if again.Name != got.Name || again.Count != got.Count {
		t.Fatalf("unexpected value: got %#v, want %#v", again, got)
	}
}

func TestConvert(t *testing.T) {
	type id string

	m := Convert[id]()

	data, err := m.Marshal(id("<id>"))
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "<id>" {
		t.Fatalf("unexpected data: got %q, want %q", string(data), "<id>")
	}

	v, err := m.Unmarshal([]byte("<other>"))
	if err != nil {
		t.Fatal(err)
	}

	if v != id("<other>") {
		t.Fatalf("unexpected value: got %q, want %q", v, "<other>")
	}
}

func TestString(t *testing.T) {
	data, err := String.Marshal("<value>")
	if err != nil {
		t.Fatal(err)
	}

	v, err := String.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if v != "<value>" {
		t.Fatalf("unexpected value: got %q, want %q", v, "<value>")
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		Name  string
		Value bool
		Data  []byte
	}{
		{Name: "true", Value: true, Data: []byte{1}},
		{Name: "false", Value: false, Data: nil},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			data, err := Bool.Marshal(c.Value)
			if err != nil {
				t.Fatal(err)
			}

			if string(data) != string(c.Data) {
				t.Fatalf("unexpected data: got %v, want %v", data, c.Data)
			}

			v, err := Bool.Unmarshal(data)
			if err != nil {
				t.Fatal(err)
			}

			if v != c.Value {
				t.Fatalf("unexpected value: got %t, want %t", v, c.Value)
			}
		})
	}
}
