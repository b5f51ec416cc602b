package cpu

import (
	"maps"
	"slices"
)

// SPARSE_GAP is the furthest past the end of the dense tape that an access
// grows it. Addresses beyond that are held sparsely.
const SPARSE_GAP = 1 << 20

// Memory is the processor tape. It grows with zeros on demand.
type Memory struct {
	Limit int64   // If non-zero, addresses at or above Limit are refused.
	Data  []int64 // Dense tape contents.

	sparse map[int64]int64 // Contents far past the end of Data.
	top    int64           // One past the highest sparse address accessed.
}

// NewMemory creates a memory holding a copy of words.
func NewMemory(words []int64) (mem *Memory) {
	mem = &Memory{
		Data: slices.Clone(words),
	}

	return
}

// Len returns the current tape length.
func (mem *Memory) Len() int64 {
	return max(int64(len(mem.Data)), mem.top)
}

// cell returns the dense cell of addr, growing the dense tape if addr is
// near its end. It returns nil when addr is held sparsely.
func (mem *Memory) cell(addr int64) (cell *int64, err error) {
	if addr < 0 {
		err = ErrAddress(addr)
		return
	}

	if mem.Limit > 0 && addr >= mem.Limit {
		err = ErrMemoryLimit
		return
	}

	old := len(mem.Data)
	if addr < int64(old) {
		cell = &mem.Data[addr]
		return
	}

	if addr-int64(old) > SPARSE_GAP {
		mem.top = max(mem.top, addr+1)
		return
	}

	// Int overflow on 32-bit hosts.
	size := addr + 1
	if int64(int(size)) != size {
		err = ErrMemoryLimit
		return
	}

	mem.Data = slices.Grow(mem.Data, int(size)-old)
	mem.Data = mem.Data[:size]
	clear(mem.Data[old:])

	// Sparse cells now covered by the dense tape move into it.
	for sparse_addr, value := range mem.sparse {
		if sparse_addr < size {
			mem.Data[sparse_addr] = value
			delete(mem.sparse, sparse_addr)
		}
	}

	cell = &mem.Data[addr]

	return
}

// Read returns the value at addr, zero extending the tape if needed.
func (mem *Memory) Read(addr int64) (value int64, err error) {
	cell, err := mem.cell(addr)
	if err != nil {
		return
	}

	if cell == nil {
		value = mem.sparse[addr]
		return
	}

	value = *cell
	return
}

// Write stores value at addr, zero extending the tape if needed.
func (mem *Memory) Write(addr int64, value int64) (err error) {
	cell, err := mem.cell(addr)
	if err != nil {
		return
	}

	if cell == nil {
		if mem.sparse == nil {
			mem.sparse = make(map[int64]int64)
		}
		mem.sparse[addr] = value
		return
	}

	*cell = value
	return
}

// Clone returns an independent copy of the memory.
func (mem *Memory) Clone() *Memory {
	return &Memory{
		Limit:  mem.Limit,
		Data:   slices.Clone(mem.Data),
		sparse: maps.Clone(mem.sparse),
		top:    mem.top,
	}
}
