package collector

import "iter"

// DefaultBatchSize is the videos.list limit on identifiers per request.
const DefaultBatchSize = 50

// Chunk yields contiguous batches of at most size ids, in order. The final
// batch may be shorter and an empty input yields nothing. A size below 1
// falls back to DefaultBatchSize.
//
// Batches are cut while the caller ranges over the sequence, so a caller that
// stops early never pays for the rest.
func Chunk(ids []string, size int) iter.Seq[[]string] {
	if size < 1 {
		size = DefaultBatchSize
	}
	return func(yield func([]string) bool) {
		for start := 0; start < len(ids); start += size {
			end := min(start+size, len(ids))
			if !yield(ids[start:end:end]) {
				return
			}
		}
	}
}
