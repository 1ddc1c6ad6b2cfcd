package table

import (
	"sync"

	"github.com/ehrlich-b/sentryd/internal/stall"
)

// shard is one partition of the Stall Table: an
// independent lock, a hash chain of in-flight Stall Entries keyed by
// request_id, and the two non-stall FIFOs belonging to this partition.
type shard struct {
	mu      sync.Mutex
	entries map[uint64]*stall.Entry
	normal  *fifo
	low     *fifo
}

func newShard(queueCapacity int, highWaterBytes int64) *shard {
	return &shard{
		entries: make(map[uint64]*stall.Entry),
		normal:  newFIFO(queueCapacity, highWaterBytes),
		low:     newFIFO(queueCapacity, highWaterBytes),
	}
}
