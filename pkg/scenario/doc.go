// Package scenario replays allocation scenarios described in YAML against any
// allocator and audits the result.
//
// # Overview
//
// A scenario names an allocator and lists steps. Each step performs one
// operation on a named block or string and states the outcome it expects:
// "ok", the short name of an allocation error (see mem.ErrorName), or
// "panic" for contract violations. The runner wraps the allocator in an
// alloc.Tracker, so overlapping blocks and leaks are reported too.
//
// # Format
//
//	name: grow-in-place
//	allocator: {kind: bump, size: 2}
//	steps:
//	  - {op: alloc,  id: a, size: 1, align: 1}
//	  - {op: fill,   id: a, byte: 0x99}
//	  - {op: grow,   id: a, size: 2}
//	  - {op: expect, id: a, offset: 0, byte: 0x99}
//	  - {op: free,   id: a}
//	  - {op: alloc,  id: b, size: 4, expect: NotEnoughMemory}
//
// # Operations
//
//	alloc   allocate size bytes aligned to align (default 1) as block id
//	fill    set every byte of block id to byte
//	grow    grow block id to size
//	shrink  shrink block id to size
//	free    free block id, or drop string id
//	expect  check byte at offset of block id, or the content of string id
//	text    append value to string id, transcoded through encoding
//
// # Allocator Kinds
//
//	bump    alloc.Bump over size bytes
//	single  alloc.Single over size bytes
//	null    alloc.Null
//	noheap  mem.NoHeap
//	heap    alloc.Heap
//	mmap    alloc.Mmap
//
// # Usage Example
//
//	sc, err := scenario.Load("grow.yaml")
//	if err != nil {
//	    return err
//	}
//	report, err := scenario.NewRunner(scenario.Options{}).Run(ctx, sc)
//	// report is valid even when err lists failed steps
package scenario
