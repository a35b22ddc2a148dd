package discovery

import (
	"reflect"
	"testing"
	"time"
)

// fakeGateway records every Send/PollDevices call and the currently armed
// timer tag, letting tests drive the action without any real transport.
type fakeGateway struct {
	sent      []Frame
	polled    bool
	pollFlags PollFlags
	armed     bool
	armedTag  State
}

func (g *fakeGateway) PollDevices(flags PollFlags, retries int) {
	g.polled = true
	g.pollFlags = flags
}

func (g *fakeGateway) Send(f Frame) { g.sent = append(g.sent, f) }

func (g *fakeGateway) ArmTimer(stateTag State, timeout time.Duration) {
	g.armed = true
	g.armedTag = stateTag
}

func (g *fakeGateway) ClearTimer() { g.armed = false }

// recordingCallback captures the done callback's result and every
// progress notification.
type recordingCallback struct {
	done       []DeviceInfo
	doneCalled int
	progress   []DeviceInfo
}

func (c *recordingCallback) OnDiscoveryDone(devices []DeviceInfo) {
	c.done = devices
	c.doneCalled++
}

func (c *recordingCallback) OnDeviceDiscovered(device DeviceInfo) {
	c.progress = append(c.progress, device)
}

func newTestAction(gw Gateway, cb Callback, cfg Config) *Action {
	return New(gw, NewOther(), NewMessageCache(), cb, cfg, LogicalAddress(4 /* playback device 1, arbitrary local addr */))
}

func TestEmptyBus(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	a := newTestAction(gw, cb, DefaultConfig())

	if !a.Start() {
		t.Fatal("Start() = false, want true")
	}
	if !gw.polled {
		t.Fatal("expected a poll request")
	}

	a.OnPollComplete(nil)

	if cb.doneCalled != 1 {
		t.Fatalf("OnDiscoveryDone called %d times, want 1", cb.doneCalled)
	}
	if len(cb.done) != 0 {
		t.Fatalf("result = %v, want empty", cb.done)
	}
	if len(gw.sent) != 0 {
		t.Fatalf("sent %d frames, want 0", len(gw.sent))
	}
	if a.state != Finished {
		t.Fatalf("state = %v, want Finished", a.state)
	}
}

func TestSingleCooperativeDevice(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	a := newTestAction(gw, cb, DefaultConfig())

	a.Start()
	a.OnPollComplete([]LogicalAddress{4})

	if len(gw.sent) != 1 || gw.sent[0].Opcode != OpGivePhysicalAddress {
		t.Fatalf("expected Give Physical Address sent, got %+v", gw.sent)
	}

	consumed := a.OnCommand(Frame{
		Source: 4, Destination: LogicalAddress(4), Opcode: OpReportPhysicalAddress,
		Params: []byte{0x10, 0x00, 0x04},
	})
	if !consumed {
		t.Fatal("OnCommand returned false for a frame the action cares about")
	}

	if len(gw.sent) != 2 || gw.sent[1].Opcode != OpGiveOSDName {
		t.Fatalf("expected Give OSD Name sent next, got %+v", gw.sent)
	}

	a.OnCommand(Frame{Source: 4, Opcode: OpSetOSDName, Params: []byte("Player")})

	if len(gw.sent) != 3 || gw.sent[2].Opcode != OpGiveDeviceVendorID {
		t.Fatalf("expected Give Device Vendor ID sent next, got %+v", gw.sent)
	}

	a.OnCommand(Frame{Source: 4, Opcode: OpDeviceVendorID, Params: []byte{0x00, 0x80, 0x45}})

	if cb.doneCalled != 1 {
		t.Fatalf("OnDiscoveryDone called %d times, want 1", cb.doneCalled)
	}
	want := DeviceInfo{
		LogicalAddress:  4,
		PhysicalAddress: 0x1000,
		PortID:          InvalidPortID,
		DeviceType:      4,
		VendorID:        0x008045,
		DisplayName:     "Player",
	}
	if len(cb.done) != 1 || cb.done[0] != want {
		t.Fatalf("result = %+v, want [%+v]", cb.done, want)
	}
	if len(cb.progress) != 1 || cb.progress[0] != want {
		t.Fatalf("progress notifications = %+v, want one matching final info", cb.progress)
	}
	if a.state != Finished || a.timerArmed {
		t.Fatalf("state = %v timerArmed=%v, want Finished with no timer", a.state, a.timerArmed)
	}
}

func TestSilentDeviceIsRemovedAfterRetries(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	cfg := DefaultConfig()
	cfg.QueryRetries = 5
	a := newTestAction(gw, cb, cfg)

	a.Start()
	a.OnPollComplete([]LogicalAddress{5})

	// 1 initial send + TIMEOUT_RETRY retries = 1+5 timer expiries total.
	for i := 0; i < cfg.QueryRetries; i++ {
		a.OnTimer(WaitingForPhysicalAddress)
	}
	if len(gw.sent) != cfg.QueryRetries+1 {
		t.Fatalf("sent %d frames, want %d (1 + retries)", len(gw.sent), cfg.QueryRetries+1)
	}
	if cb.doneCalled != 0 {
		t.Fatal("done fired before retries exhausted")
	}

	// One more expiry exhausts the budget and removes the device.
	a.OnTimer(WaitingForPhysicalAddress)

	if cb.doneCalled != 1 {
		t.Fatalf("OnDiscoveryDone called %d times, want 1", cb.doneCalled)
	}
	if len(cb.done) != 0 {
		t.Fatalf("result = %v, want empty after silent device dropped", cb.done)
	}
}

func TestFeatureAbortOnOsdName(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	a := newTestAction(gw, cb, DefaultConfig())

	a.Start()
	a.OnPollComplete([]LogicalAddress{4})
	a.OnCommand(Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{0x20, 0x00, 0x01}})

	a.OnCommand(Frame{Source: 4, Opcode: OpFeatureAbort, Params: []byte{byte(OpGiveOSDName), 0x00}})

	a.OnCommand(Frame{Source: 4, Opcode: OpDeviceVendorID, Params: []byte{0x00, 0x00, 0x01}})

	if cb.doneCalled != 1 {
		t.Fatalf("OnDiscoveryDone called %d times, want 1", cb.doneCalled)
	}
	if len(cb.done) != 1 {
		t.Fatalf("result = %+v, want one device", cb.done)
	}
	got := cb.done[0]
	if got.DisplayName != defaultOSDName(4, 1) {
		t.Fatalf("display name = %q, want default-by-type %q", got.DisplayName, defaultOSDName(4, 1))
	}
	if got.VendorID != 1 {
		t.Fatalf("vendor id = %#x, want 1", got.VendorID)
	}
}

func TestMismatchedSourceIsDroppedNotAdvanced(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	a := newTestAction(gw, cb, DefaultConfig())

	a.Start()
	a.OnPollComplete([]LogicalAddress{4})

	consumed := a.OnCommand(Frame{Source: 6, Opcode: OpReportPhysicalAddress, Params: []byte{0x10, 0x00, 0x04}})
	if !consumed {
		t.Fatal("mismatched-source frame should still be consumed (dropped), not routed elsewhere")
	}
	if a.state != WaitingForPhysicalAddress || a.processedCount != 0 {
		t.Fatalf("state advanced on mismatched source: state=%v processed=%d", a.state, a.processedCount)
	}

	// Timer fires once (simulating the retry the real host would trigger),
	// then the correct device answers.
	a.OnTimer(WaitingForPhysicalAddress)
	a.OnCommand(Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{0x10, 0x00, 0x04}})

	a.OnCommand(Frame{Source: 4, Opcode: OpSetOSDName, Params: []byte("X")})
	a.OnCommand(Frame{Source: 4, Opcode: OpDeviceVendorID, Params: []byte{0, 0, 1}})

	if cb.doneCalled != 1 || len(cb.done) != 1 {
		t.Fatalf("discovery did not complete with the correct device: done=%v result=%+v", cb.doneCalled, cb.done)
	}
}

func TestCacheHitAvoidsOutboundFrames(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	cache := NewMessageCache()
	cache.Put(4, OpReportPhysicalAddress, Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{0x10, 0x00, 0x04}})
	cache.Put(4, OpSetOSDName, Frame{Source: 4, Opcode: OpSetOSDName, Params: []byte("Player")})
	cache.Put(4, OpDeviceVendorID, Frame{Source: 4, Opcode: OpDeviceVendorID, Params: []byte{0x00, 0x80, 0x45}})

	a := New(gw, NewOther(), cache, cb, DefaultConfig(), 4)
	a.Start()
	a.OnPollComplete([]LogicalAddress{4})

	if len(gw.sent) != 0 {
		t.Fatalf("sent %d frames, want 0 (all cache hits)", len(gw.sent))
	}
	if cb.doneCalled != 1 {
		t.Fatalf("OnDiscoveryDone called %d times, want 1", cb.doneCalled)
	}
	want := DeviceInfo{
		LogicalAddress: 4, PhysicalAddress: 0x1000, PortID: InvalidPortID,
		DeviceType: 4, VendorID: 0x008045, DisplayName: "Player",
	}
	if !reflect.DeepEqual(cb.done, []DeviceInfo{want}) {
		t.Fatalf("result = %+v, want [%+v]", cb.done, want)
	}
}

func TestTvLocalDeviceWiring(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}

	var switched []LogicalAddress
	flushed := false
	tv := NewTV(
		func(PhysicalAddress) PortID { return PortID(2) },
		func(l LogicalAddress, dt DeviceType, p PhysicalAddress) { switched = append(switched, l) },
		func() { flushed = true },
	)

	a := New(gw, tv, NewMessageCache(), cb, DefaultConfig(), AddrTV)
	a.Start()
	a.OnPollComplete([]LogicalAddress{4})
	a.OnCommand(Frame{Source: 4, Opcode: OpReportPhysicalAddress, Params: []byte{0x10, 0x00, 0x04}})

	if len(switched) != 1 || switched[0] != 4 {
		t.Fatalf("TV was not notified of the switch: %v", switched)
	}

	a.OnCommand(Frame{Source: 4, Opcode: OpSetOSDName, Params: []byte("Player")})
	a.OnCommand(Frame{Source: 4, Opcode: OpDeviceVendorID, Params: []byte{0, 0x80, 0x45}})

	if !flushed {
		t.Fatal("TV was not asked to flush delayed messages at wrap-up")
	}
	if cb.done[0].PortID != PortID(2) {
		t.Fatalf("port id = %v, want 2", cb.done[0].PortID)
	}
}

func TestCancelSuppressesCallback(t *testing.T) {
	gw := &fakeGateway{}
	cb := &recordingCallback{}
	a := newTestAction(gw, cb, DefaultConfig())

	a.Start()
	a.OnPollComplete([]LogicalAddress{4})
	a.Cancel()

	if cb.doneCalled != 0 {
		t.Fatal("Cancel must not invoke the done callback")
	}
	if a.state != Finished {
		t.Fatalf("state = %v, want Finished", a.state)
	}
}
