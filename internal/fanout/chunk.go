package fanout

// Chunk splits items into groups of at most size. The write path commits
// each group in its own transaction, so no single commit exceeds the
// store's per-batch operation limit.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size:size])
	}
	return append(chunks, items)
}
