package asvec

import (
	"slices"
	"testing"
)

func mustWrite[T any](t *testing.T, h *Handle[T]) *WriteGuard[T] {
	t.Helper()
	w, err := h.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return w
}

func snapshot[T any](t *testing.T, h *Handle[T]) []T {
	t.Helper()
	r := h.Read()
	defer r.Unlock()
	out := make([]T, 0, r.Len())
	r.Range(func(_ int, v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func TestHandle_PushPop(t *testing.T) {
	h := New[int]()
	defer h.Close()

	w := mustWrite(t, h)
	w.Push(1)
	w.Push(2)
	if v, ok := w.Pop(); !ok || v != 2 {
		t.Errorf("Pop = %d, %v, want 2, true", v, ok)
	}
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{1}) {
		t.Errorf("slice = %v, want [1]", got)
	}
}

func TestHandle_PopEmpty(t *testing.T) {
	h := New[int]()
	defer h.Close()

	w := mustWrite(t, h)
	defer w.Unlock()
	if _, ok := w.Pop(); ok {
		t.Error("Pop on empty = true, want false")
	}
}

func TestHandle_InsertRemove(t *testing.T) {
	h := From([]int{1, 3})
	defer h.Close()

	w := mustWrite(t, h)
	w.Insert(1, 2)
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("after Insert = %v, want [1 2 3]", got)
	}

	w = mustWrite(t, h)
	if v := w.Remove(0); v != 1 {
		t.Errorf("Remove(0) = %d, want 1", v)
	}
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("after Remove = %v, want [2 3]", got)
	}
}

func TestHandle_SetSwap(t *testing.T) {
	h := From([]int{1, 2, 3})
	defer h.Close()

	w := mustWrite(t, h)
	w.Set(0, 9)
	w.Swap(0, 2)
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{3, 2, 9}) {
		t.Errorf("slice = %v, want [3 2 9]", got)
	}
}

func TestHandle_TruncateClear(t *testing.T) {
	h := From([]int{1, 2, 3, 4})
	defer h.Close()

	w := mustWrite(t, h)
	w.Truncate(10) // no-op
	w.Truncate(2)
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("after Truncate = %v, want [1 2]", got)
	}

	w = mustWrite(t, h)
	w.Clear()
	w.Unlock()

	if got := snapshot(t, h); len(got) != 0 {
		t.Errorf("after Clear = %v, want empty", got)
	}
}

func TestHandle_Retain(t *testing.T) {
	h := From([]int{1, 2, 3, 4, 5})
	defer h.Close()

	w := mustWrite(t, h)
	w.Retain(func(v int) bool { return v%2 == 0 })
	w.Unlock()

	if got := snapshot(t, h); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("after Retain = %v, want [2 4]", got)
	}
}

func TestHandle_Drain(t *testing.T) {
	h := From([]int{1, 2, 3})
	defer h.Close()

	w := mustWrite(t, h)
	drained := w.Drain()
	if !slices.Equal(drained, []int{1, 2, 3}) {
		t.Errorf("Drain = %v, want [1 2 3]", drained)
	}
	if w.Len() != 0 {
		t.Errorf("standby Len after Drain = %d, want 0", w.Len())
	}
	w.Unlock()

	// The replay drains the other copy too; the returned elements belong to
	// the caller and survive.
	w = mustWrite(t, h)
	if w.Len() != 0 {
		t.Errorf("other copy Len after replay = %d, want 0", w.Len())
	}
	w.Unlock()
	if !slices.Equal(drained, []int{1, 2, 3}) {
		t.Errorf("drained elements changed after replay: %v", drained)
	}
}

func TestHandle_BothCopiesConverge(t *testing.T) {
	h := New[int]()
	defer h.Close()

	for i := 0; i < 5; i++ {
		w := mustWrite(t, h)
		w.Push(i)
		w.Unlock()
	}

	w := mustWrite(t, h)
	defer w.Unlock()
	if w.Len() != 5 {
		t.Fatalf("standby Len = %d, want 5", w.Len())
	}
	for i := 0; i < 5; i++ {
		if got := w.At(i); got != i {
			t.Errorf("standby At(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestFrom_ClonesSeed(t *testing.T) {
	seed := []int{7}
	h := From(seed)
	defer h.Close()
	seed[0] = 0

	r := h.Read()
	defer r.Unlock()
	if got := r.At(0); got != 7 {
		t.Errorf("At(0) = %d, want 7", got)
	}
}

func TestLock_PushShared(t *testing.T) {
	l := NewLock[string]()

	w, err := l.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Push("x")
	w.Unlock()

	r, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer r.Unlock()
	if r.Len() != 1 || r.At(0) != "x" {
		t.Errorf("slice = len %d, first %q, want 1, x", r.Len(), r.At(0))
	}
}
