package ir

import "testing"

type fakeRuntime struct{}

func (fakeRuntime) Alloc(bytes int64) (uintptr, error) { return 0x1000, nil }
func (fakeRuntime) Dealloc(ptr uintptr)                {}
func (fakeRuntime) Describe() string                   { return "fake" }

// TestAllocatorSmallestFit checks that Alloc reuses the smallest free
// hole that still fits rather than extending the arena's tail.
func TestAllocatorSmallestFit(t *testing.T) {
	a := newAllocator(fakeRuntime{})

	off, err := a.Alloc(8)
	if err != nil || off != 0 {
		t.Fatalf("alloc(8) = %d, %v; want 0, nil", off, err)
	}
	off, err = a.Alloc(16)
	if err != nil || off != 8 {
		t.Fatalf("alloc(16) = %d, %v; want 8, nil", off, err)
	}
	off, err = a.Alloc(8)
	if err != nil || off != 24 {
		t.Fatalf("alloc(8) = %d, %v; want 24, nil", off, err)
	}
	if err := a.Free(8, 16); err != nil {
		t.Fatalf("free(8, 16): %v", err)
	}
	off, err = a.Alloc(8)
	if err != nil || off != 8 {
		t.Fatalf("alloc(8) after free = %d, %v; want 8, nil", off, err)
	}
	if a.Peak() != 32 {
		t.Errorf("peak = %d; want 32", a.Peak())
	}
}

// TestAllocatorTailExtension checks that freeing the tail block and
// then requesting more than it holds extends the arena from that
// block's offset rather than abandoning it and growing from peak.
func TestAllocatorTailExtension(t *testing.T) {
	a := newAllocator(fakeRuntime{})

	off, err := a.Alloc(16)
	if err != nil || off != 0 {
		t.Fatalf("alloc(16) = %d, %v; want 0, nil", off, err)
	}
	if err := a.Free(0, 16); err != nil {
		t.Fatalf("free(0, 16): %v", err)
	}
	off, err = a.Alloc(24)
	if err != nil || off != 0 {
		t.Fatalf("alloc(24) = %d, %v; want 0, nil", off, err)
	}
	if a.Peak() != 24 {
		t.Errorf("peak = %d; want 24", a.Peak())
	}
}

func TestAllocatorSealsAfterGetPtr(t *testing.T) {
	a := newAllocator(fakeRuntime{})
	if _, err := a.Alloc(8); err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.GetPtr(); err != nil {
		t.Fatalf("getptr: %v", err)
	}
	if _, err := a.Alloc(8); !Is(err, KindAllocatorSealed) {
		t.Fatalf("alloc after GetPtr: got %v, want AllocatorSealed", err)
	}
	if err := a.Free(0, 8); !Is(err, KindAllocatorSealed) {
		t.Fatalf("free after GetPtr: got %v, want AllocatorSealed", err)
	}
}
