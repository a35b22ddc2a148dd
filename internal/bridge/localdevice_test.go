package bridge

import (
	"testing"

	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
)

func TestPortFromPhysicalAddress(t *testing.T) {
	cases := []struct {
		in   discovery.PhysicalAddress
		want discovery.PortID
	}{
		{discovery.InvalidPhysicalAddress, discovery.InvalidPortID},
		{0x0000, discovery.InvalidPortID}, // the bus itself, not behind any port
		{0x1000, 1},
		{0x3420, 3},
	}
	for _, c := range cases {
		if got := portFromPhysicalAddress(c.in); got != c.want {
			t.Errorf("portFromPhysicalAddress(0x%04X) = %v, want %v", uint16(c.in), got, c.want)
		}
	}
}

func TestNewLocalDeviceTVWiresCallbacks(t *testing.T) {
	var switched bool
	var flushed bool

	tv := newLocalDevice(discovery.DeviceTypeTV,
		func(discovery.LogicalAddress, discovery.DeviceType, discovery.PhysicalAddress) { switched = true },
		func() { flushed = true })

	tv.NotifySwitch(4, discovery.DeviceTypePlaybackDevice, 0x2000)
	tv.FlushDelayedMessages()

	if !switched || !flushed {
		t.Fatalf("expected both callbacks invoked, got switched=%v flushed=%v", switched, flushed)
	}
	if got := tv.PortIDOf(0x2000); got != 2 {
		t.Errorf("PortIDOf(0x2000) = %v, want 2", got)
	}
}

func TestNewLocalDeviceAudioSystemResolvesPortOnly(t *testing.T) {
	audio := newLocalDevice(discovery.DeviceTypeAudioSystem, nil, nil)
	if got := audio.PortIDOf(0x3000); got != 3 {
		t.Errorf("PortIDOf(0x3000) = %v, want 3", got)
	}
	// NotifySwitch/FlushDelayedMessages must be safe no-ops.
	audio.NotifySwitch(4, discovery.DeviceTypeTuner, 0x3000)
	audio.FlushDelayedMessages()
}

func TestNewLocalDeviceOtherIsAllNoOp(t *testing.T) {
	other := newLocalDevice(discovery.DeviceTypeTuner, nil, nil)
	if got := other.PortIDOf(0x1000); got != discovery.InvalidPortID {
		t.Errorf("PortIDOf on the Other variant = %v, want InvalidPortID", got)
	}
	other.NotifySwitch(4, discovery.DeviceTypeTuner, 0x1000)
	other.FlushDelayedMessages()
}
