// Package hostruntime provides the one runtime façade this module
// ships with: an in-process byte pool backing the ir.Runtime contract
// for tests, demos, and any caller without a real device backend.
package hostruntime

import (
	"fmt"
	"sync"
	"unsafe"

	"k8s.io/klog/v2"
)

// Runtime is a thread-safe host-memory façade: each Alloc carves out
// a fresh []byte and hands back a pointer to its first element.
// Multiple graphs may share one Runtime concurrently, even though a
// single graph's own mutations stay single-threaded.
type Runtime struct {
	mu      sync.Mutex
	pools   map[uintptr][]byte
	allocs  int
	maxPool int64
}

// New creates an empty host runtime.
func New() *Runtime {
	return &Runtime{pools: make(map[uintptr][]byte)}
}

// Alloc reserves bytes bytes from the Go heap and returns the address
// of the first byte. A zero-byte request still returns a usable,
// distinct pointer, mirroring malloc(0)'s common behavior.
func (r *Runtime) Alloc(bytes int64) (uintptr, error) {
	if bytes < 0 {
		return 0, fmt.Errorf("hostruntime: negative allocation size %d", bytes)
	}
	buf := make([]byte, bytes)
	var ptr uintptr
	if bytes > 0 {
		ptr = uintptr(unsafe.Pointer(&buf[0]))
	} else {
		ptr = uintptr(unsafe.Pointer(&buf))
	}

	r.mu.Lock()
	r.pools[ptr] = buf
	r.allocs++
	if bytes > r.maxPool {
		r.maxPool = bytes
	}
	r.mu.Unlock()

	klog.V(3).InfoS("hostruntime alloc", "bytes", bytes, "ptr", ptr)
	return ptr, nil
}

// Dealloc releases a pointer previously returned by Alloc. It is a
// no-op on a pointer it does not recognize, so it tolerates being
// called twice or on an address it never issued.
func (r *Runtime) Dealloc(ptr uintptr) {
	r.mu.Lock()
	delete(r.pools, ptr)
	r.mu.Unlock()
}

// Describe reports the runtime's identity, the number of Alloc calls
// it has served and the largest single pool it has handed out, for
// diagnostics.
func (r *Runtime) Describe() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("hostruntime(allocs=%d, largest=%d)", r.allocs, r.maxPool)
}
