package discovery

// cacheKey identifies a cached reply by the device that sent it and the
// opcode it answers.
type cacheKey struct {
	source LogicalAddress
	opcode Opcode
}

// MessageCache holds the most recent frame seen from each (source, opcode)
// pair. It belongs to the enclosing local device and outlives any single
// discovery run; the host calls Put on every inbound frame it accepts, the
// action calls Get before issuing a query. Both happen on the same
// dispatcher thread, so no locking is needed (see spec §5).
type MessageCache struct {
	entries map[cacheKey]Frame
}

// NewMessageCache creates an empty cache. Size is unbounded; eviction is
// the host's concern, not this package's.
func NewMessageCache() *MessageCache {
	return &MessageCache{entries: make(map[cacheKey]Frame)}
}

// Put records frame as the most recent reply from source for opcode,
// overwriting whatever was cached before (last-write-wins).
func (c *MessageCache) Put(source LogicalAddress, opcode Opcode, frame Frame) {
	c.entries[cacheKey{source, opcode}] = frame
}

// Get returns the most recently cached frame from source for opcode, if any.
func (c *MessageCache) Get(source LogicalAddress, opcode Opcode) (Frame, bool) {
	f, ok := c.entries[cacheKey{source, opcode}]
	return f, ok
}
