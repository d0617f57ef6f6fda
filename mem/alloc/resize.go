package alloc

// mustGrow panics unless newSize enlarges a size byte block.
func mustGrow(size, newSize uintptr) {
	if newSize <= size {
		panic("alloc: grow must enlarge the block")
	}
}

// mustShrink panics unless newSize reduces a size byte block.
func mustShrink(size, newSize uintptr) {
	if newSize >= size {
		panic("alloc: shrink must reduce the block")
	}
}
