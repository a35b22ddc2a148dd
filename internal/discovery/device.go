package discovery

// DeviceRecord is the in-progress inventory entry for one acknowledged
// logical address. LogicalAddress is immutable after construction; every
// other field starts at its documented default and is filled in as each
// stage completes (or left at default on feature-abort). A record whose
// query retries run out is removed from the inventory.
type DeviceRecord struct {
	LogicalAddress  LogicalAddress
	PhysicalAddress PhysicalAddress
	PortID          PortID
	DeviceType      DeviceType
	VendorID        VendorID
	DisplayName     string
}

func newDeviceRecord(addr LogicalAddress) *DeviceRecord {
	return &DeviceRecord{
		LogicalAddress:  addr,
		PhysicalAddress: InvalidPhysicalAddress,
		PortID:          InvalidPortID,
		DeviceType:      DeviceInactive,
		VendorID:        UnknownVendorID,
		DisplayName:     "",
	}
}

// DeviceInfo is the immutable result of discovery for one device, handed to
// the completion callback. It never aliases a DeviceRecord after wrap-up.
type DeviceInfo struct {
	LogicalAddress  LogicalAddress
	PhysicalAddress PhysicalAddress
	PortID          PortID
	DeviceType      DeviceType
	VendorID        VendorID
	DisplayName     string
}

func (r *DeviceRecord) snapshot() DeviceInfo {
	return DeviceInfo{
		LogicalAddress:  r.LogicalAddress,
		PhysicalAddress: r.PhysicalAddress,
		PortID:          r.PortID,
		DeviceType:      r.DeviceType,
		VendorID:        r.VendorID,
		DisplayName:     r.DisplayName,
	}
}
