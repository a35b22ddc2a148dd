package discovery

import "testing"

func TestMessageCachePutGet(t *testing.T) {
	c := NewMessageCache()

	if _, ok := c.Get(4, OpReportPhysicalAddress); ok {
		t.Fatal("expected miss on empty cache")
	}

	first := Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{1, 2, 3}}
	c.Put(4, OpReportPhysicalAddress, first)

	got, ok := c.Get(4, OpReportPhysicalAddress)
	if !ok || got.Params[0] != 1 {
		t.Fatalf("got %+v, ok=%v, want %+v", got, ok, first)
	}

	// Last-write-wins for the same (source, opcode) key.
	second := Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{9, 9, 9}}
	c.Put(4, OpReportPhysicalAddress, second)

	got, ok = c.Get(4, OpReportPhysicalAddress)
	if !ok || got.Params[0] != 9 {
		t.Fatalf("got %+v, want last write %+v", got, second)
	}

	// A different opcode from the same source is a distinct entry.
	if _, ok := c.Get(4, OpSetOSDName); ok {
		t.Fatal("expected miss for an opcode never put")
	}
}
