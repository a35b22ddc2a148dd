package bridge

import (
	"testing"

	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
)

func TestFormatPhysicalAddress(t *testing.T) {
	cases := []struct {
		in   discovery.PhysicalAddress
		want string
	}{
		{discovery.InvalidPhysicalAddress, "f.f.f.f"},
		{0x1000, "1.0.0.0"},
		{0x1230, "1.2.3.0"},
	}
	for _, c := range cases {
		if got := formatPhysicalAddress(c.in); got != c.want {
			t.Errorf("formatPhysicalAddress(0x%04X) = %q, want %q", uint16(c.in), got, c.want)
		}
	}
}

func TestFormatVendorID(t *testing.T) {
	if got := formatVendorID(0x0000F0); got != "0x0000F0" {
		t.Errorf("formatVendorID(0x0000F0) = %q, want 0x0000F0", got)
	}
}

func TestViewOfResolvesKnownVendor(t *testing.T) {
	d := discovery.DeviceInfo{
		LogicalAddress:  4,
		PhysicalAddress: 0x2000,
		PortID:          2,
		DeviceType:      discovery.DeviceTypePlaybackDevice,
		VendorID:        0x0000F0, // Samsung
		DisplayName:     "Living Room",
	}
	v := viewOf(d)

	if v.LogicalAddress != 4 || v.PhysicalAddress != "2.0.0.0" || v.PortID != 2 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if v.VendorName != "Samsung" {
		t.Errorf("VendorName = %q, want Samsung", v.VendorName)
	}
	if v.DisplayName != "Living Room" {
		t.Errorf("DisplayName = %q, want Living Room", v.DisplayName)
	}
}

func TestViewOfUnknownVendorOmitsName(t *testing.T) {
	d := discovery.DeviceInfo{VendorID: 0xABCDEF}
	v := viewOf(d)
	if v.VendorName != "" {
		t.Errorf("VendorName = %q, want empty for an unrecognized vendor ID", v.VendorName)
	}
}

func TestHubBroadcastDeviceSkipsConnectionlessly(t *testing.T) {
	// No open connections: broadcast must not panic or block.
	h := NewHub()
	h.broadcastDevice(discovery.DeviceInfo{LogicalAddress: 1})
	h.broadcastDone([]discovery.DeviceInfo{{LogicalAddress: 1}})
}
