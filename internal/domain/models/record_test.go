package models

import (
	"testing"
)

func TestRecord_OrderPreserved(t *testing.T) {
	r := NewRecord()
	r.Set("c", 1)
	r.Set("a", 2)
	r.Set("b", 3)
	r.Set("a", 4) // overwrite keeps position

	want := []string{"c", "a", "b"}
	got := r.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys: want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys: want %v got %v", want, got)
		}
	}
	if v, _ := r.Get("a"); v != 4 {
		t.Fatalf("overwrite lost: got %v", v)
	}
}

func TestRecord_Delete(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Delete("a")
	r.Delete("missing") // no-op

	if r.Len() != 1 {
		t.Fatalf("len: want 1 got %d", r.Len())
	}
	if r.Has("a") {
		t.Fatalf("deleted key still present")
	}
	if got := r.Keys(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("keys after delete: %v", got)
	}
}

func TestRecord_First(t *testing.T) {
	r := NewRecord()
	r.Set("tarih", nil) // present but nil does not win
	r.Set("date", "2024-01-02")
	r.Set("timestamp", int64(1700000000))

	key, v, ok := r.First("tarih", "date", "timestamp")
	if !ok || key != "date" || v != "2024-01-02" {
		t.Fatalf("First: got (%q, %v, %v)", key, v, ok)
	}

	if _, _, ok := r.First("missing", "also_missing"); ok {
		t.Fatalf("First matched nothing, want ok=false")
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	in := `{"z":1,"a":"x","nested":{"b":null,"n":2.5},"list":[{"k":"v"},3,true]}`

	r := NewRecord()
	if err := r.UnmarshalJSON([]byte(in)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("round trip changed order or content:\n in: %s\nout: %s", in, out)
	}

	// numbers decode as int64 / float64
	if v, _ := r.Get("z"); v != int64(1) {
		t.Fatalf("z: want int64(1) got %T %v", v, v)
	}
	nested, _ := r.Get("nested")
	if v, _ := nested.(*Record).Get("n"); v != 2.5 {
		t.Fatalf("n: want 2.5 got %v", v)
	}
}

func TestRecord_UnmarshalRejectsNonObject(t *testing.T) {
	r := NewRecord()
	if err := r.UnmarshalJSON([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object input")
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	inner := NewRecord()
	inner.Set("x", int64(1))
	r := NewRecord()
	r.Set("inner", inner)
	r.Set("list", []any{int64(1), int64(2)})

	c := r.Clone()
	ci, _ := c.Get("inner")
	ci.(*Record).Set("x", int64(99))
	cl, _ := c.Get("list")
	cl.([]any)[0] = int64(99)

	if v, _ := inner.Get("x"); v != int64(1) {
		t.Fatalf("clone shares nested record")
	}
	ol, _ := r.Get("list")
	if ol.([]any)[0] != int64(1) {
		t.Fatalf("clone shares list backing array")
	}
}
