package handles

import (
	"errors"
	"sync"
	"testing"
)

func TestTable_Basic(t *testing.T) {
	tbl := New[string]()

	h, err := tbl.Insert("test value")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := tbl.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	if !tbl.Set(h, "changed") {
		t.Fatal("Set failed")
	}

	val, ok = tbl.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "changed" {
		t.Fatalf("Expected 'changed', got %v", val)
	}

	if _, ok := tbl.Get(h); ok {
		t.Fatal("Expected Get to fail after Remove")
	}
	if _, ok := tbl.Remove(h); ok {
		t.Fatal("Expected second Remove to fail")
	}
	if tbl.Set(h, "x") {
		t.Fatal("Expected Set to fail after Remove")
	}
}

func TestTable_ZeroHandle(t *testing.T) {
	tbl := New[int]()
	if _, ok := tbl.Get(0); ok {
		t.Fatal("handle 0 must be invalid")
	}
	if _, ok := tbl.Remove(0); ok {
		t.Fatal("handle 0 must be invalid")
	}
	if _, ok := tbl.Get(99); ok {
		t.Fatal("out of range handle must be invalid")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	tbl := New[int]()

	h1, _ := tbl.Insert(1)
	h2, _ := tbl.Insert(2)
	h3, _ := tbl.Insert(3)

	tbl.Remove(h2)
	tbl.Remove(h1)

	h4, _ := tbl.Insert(4)
	h5, _ := tbl.Insert(5)

	if h4 != h1 || h5 != h2 {
		t.Fatalf("expected freed slots %d,%d to be reused, got %d,%d", h1, h2, h4, h5)
	}
	if v, _ := tbl.Get(h3); v != 3 {
		t.Fatalf("h3 = %d, want 3", v)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
}

func TestTable_RemoveFunc(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 10; i++ {
		tbl.Insert(i)
	}

	n := tbl.RemoveFunc(func(v int) bool { return v%2 == 0 })
	if n != 5 {
		t.Fatalf("RemoveFunc removed %d, want 5", n)
	}
	if tbl.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tbl.Len())
	}
	tbl.Each(func(_ Handle, v int) bool {
		if v%2 == 0 {
			t.Errorf("even value %d survived", v)
		}
		return true
	})
}

func TestTable_Close(t *testing.T) {
	tbl := New[int]()
	tbl.Insert(1)
	tbl.Insert(2)

	if err := tbl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len after Close = %d", tbl.Len())
	}

	_, err := tbl.Insert(3)
	if !errors.Is(err, ErrClosed) {
		t.Fatal("Expected ErrClosed after Close")
	}
}

func TestTable_Concurrent(t *testing.T) {
	tbl := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h, _ := tbl.Insert(id)
			if v, ok := tbl.Get(h); !ok || v != id {
				t.Errorf("Get(%d) = %d, %v", h, v, ok)
			}
			tbl.Remove(h)
		}(i)
	}

	wg.Wait()
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d after concurrent insert/remove", tbl.Len())
	}
}
