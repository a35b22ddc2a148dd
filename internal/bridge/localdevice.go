package bridge

import "github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"

// portFromPhysicalAddress derives a local HDMI input port from a remote
// physical address using the same top-nibble convention the teacher's
// SwitchToHDMIPort/PhysicalAddressToString helpers use: port N sits at
// physical address N.0.0.0.
func portFromPhysicalAddress(phys discovery.PhysicalAddress) discovery.PortID {
	if phys == discovery.InvalidPhysicalAddress {
		return discovery.InvalidPortID
	}
	port := (uint16(phys) >> 12) & 0xF
	if port == 0 {
		return discovery.InvalidPortID
	}
	return discovery.PortID(port)
}

// newLocalDevice builds the LocalDevice capability variant for deviceType,
// per the tagged-variant design in discovery.LocalDevice: a TV gets switch
// bookkeeping and delayed-message flushing, an audio system gets port
// resolution only, and everything else is the no-op Other variant.
func newLocalDevice(deviceType discovery.DeviceType, onSwitch func(discovery.LogicalAddress, discovery.DeviceType, discovery.PhysicalAddress), onFlush func()) discovery.LocalDevice {
	switch deviceType {
	case discovery.DeviceTypeTV:
		return discovery.NewTV(portFromPhysicalAddress, onSwitch, onFlush)
	case discovery.DeviceTypeAudioSystem:
		return discovery.NewAudioSystem(portFromPhysicalAddress)
	default:
		return discovery.NewOther()
	}
}
