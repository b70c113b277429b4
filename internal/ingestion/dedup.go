package ingestion

import (
	"container/list"

	"github.com/google/uuid"
)

// CommandDedup is an LRU of recently processed op_ids. JetStream
// redelivers a command whose ack was lost after the engine already
// applied it; the dedup window turns those redeliveries into no-ops.
// Not thread-safe — only accessed from the single-threaded command loop.
type CommandDedup struct {
	capacity int
	cache    map[uuid.UUID]*list.Element
	lruList  *list.List
}

func NewCommandDedup(capacity int) *CommandDedup {
	return &CommandDedup{
		capacity: capacity,
		cache:    make(map[uuid.UUID]*list.Element, capacity),
		lruList:  list.New(),
	}
}

// Seen reports whether opID was recently processed, promoting it.
func (d *CommandDedup) Seen(opID uuid.UUID) bool {
	elem, ok := d.cache[opID]
	if ok {
		d.lruList.MoveToFront(elem)
		return true
	}
	return false
}

// Mark records opID as processed, evicting the oldest entry at capacity.
func (d *CommandDedup) Mark(opID uuid.UUID) {
	if elem, ok := d.cache[opID]; ok {
		d.lruList.MoveToFront(elem)
		return
	}

	elem := d.lruList.PushFront(opID)
	d.cache[opID] = elem

	if d.lruList.Len() > d.capacity {
		oldest := d.lruList.Back()
		if oldest != nil {
			d.lruList.Remove(oldest)
			delete(d.cache, oldest.Value.(uuid.UUID))
		}
	}
}
