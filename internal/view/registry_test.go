package view

import (
	"errors"
	"testing"
)

type testView struct {
	Base
	closed bool
}

func (v *testView) Close() error {
	v.closed = true
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	a := &testView{Base: NewBase("Alpha")}
	if err := r.Register(a); err != nil {
		t.Fatalf("Register(Alpha) failed: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	got, ok := r.FindByName("Alpha")
	if !ok || got != View(a) {
		t.Errorf("FindByName(Alpha) = %v, %v", got, ok)
	}
}

func TestRegistry_RejectDuplicateName(t *testing.T) {
	r := NewRegistry()

	first := &testView{Base: NewBase("Alpha")}
	second := &testView{Base: NewBase("Alpha")}

	if err := r.Register(first); err != nil {
		t.Fatalf("Register(first) failed: %v", err)
	}
	err := r.Register(second)
	if !errors.Is(err, ErrViewExists) {
		t.Fatalf("Register(second) = %v, want ErrViewExists", err)
	}

	// The registry retains exactly the first registration.
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	got, _ := r.FindByName("Alpha")
	if got != View(first) {
		t.Error("duplicate registration replaced the first view")
	}
}

func TestRegistry_RejectNilAndUnnamed(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Error("Register(nil) succeeded")
	}
	if err := r.Register(&testView{}); err == nil {
		t.Error("Register of unnamed view succeeded")
	}
}

func TestRegistry_ForEachOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if err := r.Register(&testView{Base: NewBase(n)}); err != nil {
			t.Fatalf("Register(%s) failed: %v", n, err)
		}
	}

	var visited []string
	r.ForEach(func(v View) bool {
		visited = append(visited, v.Name())
		return true
	})

	if len(visited) != len(names) {
		t.Fatalf("visited %d views, want %d", len(visited), len(names))
	}
	for i, n := range names {
		if visited[i] != n {
			t.Errorf("visit %d = %s, want %s (registration order)", i, visited[i], n)
		}
	}
}

func TestRegistry_ForEachEarlyStop(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		r.Register(&testView{Base: NewBase(n)})
	}

	count := 0
	r.ForEach(func(View) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("visited %d views after early stop, want 2", count)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	a := &testView{Base: NewBase("a")}
	b := &testView{Base: NewBase("b")}
	r.Register(a)
	r.Register(b)

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
	if !a.closed || !b.closed {
		t.Error("Clear did not close owned views")
	}
	if _, ok := r.FindByName("a"); ok {
		t.Error("FindByName found a view after Clear")
	}

	// The registry is reusable after Clear.
	if err := r.Register(&testView{Base: NewBase("a")}); err != nil {
		t.Errorf("Register after Clear failed: %v", err)
	}
}
