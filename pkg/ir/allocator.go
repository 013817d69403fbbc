package ir

import (
	"sort"

	"github.com/infinicore/tengraph/pkg/metrics"
)

// alignment is the byte boundary every arena offset and size is
// rounded up to.
const alignment = 8

// Runtime is the façade a Graph uses to materialize its arena once
// planning is complete. Concrete device/host backends live outside
// this package; pkg/ir only ever sees this interface.
type Runtime interface {
	// Alloc reserves bytes contiguous bytes and returns their base
	// address. Called exactly once per Allocator, at GetPtr time.
	Alloc(bytes int64) (uintptr, error)
	// Dealloc releases a base address previously returned by Alloc.
	Dealloc(ptr uintptr)
	// Describe returns a short, human-readable identification of the
	// backing runtime, for logging.
	Describe() string
}

// freeBlock is an available byte range within the arena, identified
// by its (size, offset) pair. Free re-sorts the list by that pair and
// Alloc breaks ties between equal-size blocks by lowest offset, so
// selection is deterministic even after Alloc splits a block in place.
type freeBlock struct {
	offset int64
	size   int64
}

// Allocator is a lifetime-aware, single-pool smallest-fit arena. It
// runs in two phases: while the graph is being planned, Alloc/Free
// carve and reclaim ranges from a never-shrinking virtual pool; once
// DataMalloc finishes, GetPtr materializes the pool against the
// runtime exactly once and every offset becomes a real address.
type Allocator struct {
	runtime Runtime

	used int64
	peak int64

	free []freeBlock

	base  uintptr
	sized bool
}

func newAllocator(rt Runtime) *Allocator {
	return &Allocator{runtime: rt}
}

// Used returns the arena's current live-byte count.
func (a *Allocator) Used() int64 { return a.used }

// Peak returns the arena's high-water mark, the size that will be
// requested from the runtime at GetPtr time.
func (a *Allocator) Peak() int64 { return a.peak }

// Sealed reports whether GetPtr has already materialized the arena.
func (a *Allocator) Sealed() bool { return a.sized }

// Alloc reserves size bytes, preferring the smallest free block that
// still fits; if none fits, it extends the arena's tail rather than
// coalescing adjacent free blocks. Returns the offset, not a real
// address — call GetPtr after planning to materialize the pool.
func (a *Allocator) Alloc(size int64) (int64, error) {
	if a.sized {
		return 0, errAllocatorSealed("Alloc")
	}
	size = alignUp(size)

	metrics.PlanAllocationsTotal.Inc()

	best := -1
	for i, fb := range a.free {
		if fb.size < size {
			continue
		}
		if best == -1 || fb.size < a.free[best].size || (fb.size == a.free[best].size && fb.offset < a.free[best].offset) {
			best = i
		}
	}

	var offset int64
	if best != -1 {
		fb := a.free[best]
		offset = fb.offset
		if fb.size == size {
			a.free = append(a.free[:best], a.free[best+1:]...)
		} else {
			a.free[best] = freeBlock{offset: fb.offset + size, size: fb.size - size}
		}
	} else if len(a.free) > 0 {
		// No block is big enough on its own: extend the free block
		// with the largest begin rather than growing the pool from a
		// fresh offset, so the extension reuses freed space instead of
		// stranding it below the new peak.
		tail := 0
		for i, fb := range a.free {
			if fb.offset > a.free[tail].offset {
				tail = i
			}
		}
		fb := a.free[tail]
		if fb.offset+fb.size == a.peak {
			offset = fb.offset
			a.peak += size - fb.size
			a.free = append(a.free[:tail], a.free[tail+1:]...)
		} else {
			// The highest free block does not reach the peak, so
			// extending it would overlap live ranges: grow from peak.
			offset = a.peak
		}
	} else {
		offset = a.peak
	}

	a.used += size
	if offset+size > a.peak {
		a.peak = offset + size
	}

	metrics.PoolUsedBytes.Set(float64(a.used))
	metrics.PoolPeakBytes.Set(float64(a.peak))

	return offset, nil
}

// Free releases the range [addr, addr+size) back to the arena for
// reuse by a later Alloc. It does not coalesce with neighboring free
// blocks; plans are short-lived enough that the resulting fragmentation
// isn't worth paying for interval-merging on every free.
func (a *Allocator) Free(addr, size int64) error {
	if a.sized {
		return errAllocatorSealed("Free")
	}
	size = alignUp(size)
	a.used -= size
	a.free = append(a.free, freeBlock{offset: addr, size: size})
	sort.Slice(a.free, func(i, j int) bool {
		if a.free[i].size != a.free[j].size {
			return a.free[i].size < a.free[j].size
		}
		return a.free[i].offset < a.free[j].offset
	})
	metrics.PoolUsedBytes.Set(float64(a.used))
	return nil
}

// GetPtr materializes the arena against the runtime, requesting Peak
// bytes exactly once, and seals the allocator: further Alloc/Free
// calls fail. Calling it again just returns the cached address.
func (a *Allocator) GetPtr() (uintptr, error) {
	if a.sized {
		return a.base, nil
	}
	ptr, err := a.runtime.Alloc(a.peak)
	if err != nil {
		return 0, errOutOfMemory("GetPtr", a.peak)
	}
	a.base = ptr
	a.sized = true
	return a.base, nil
}

func alignUp(n int64) int64 {
	if r := n % alignment; r != 0 {
		n += alignment - r
	}
	return n
}
