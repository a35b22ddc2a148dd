package discovery

import "github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"

// stageOpcodes returns the (request, expected-reply) opcode pair for the
// action's current stage. Only called while in one of the three querying
// states.
func (a *Action) stageOpcodes() (request, reply Opcode) {
	switch a.state {
	case WaitingForPhysicalAddress:
		return OpGivePhysicalAddress, OpReportPhysicalAddress
	case WaitingForOsdName:
		return OpGiveOSDName, OpSetOSDName
	case WaitingForVendorId:
		return OpGiveDeviceVendorID, OpDeviceVendorID
	default:
		return 0, 0
	}
}

// issueStageQuery implements the per-stage query contract (spec §4.3) for
// target: skip invalid addresses (advancing the counter rather than
// looping forever — see the Open Question in spec §9), otherwise consult
// the cache and either synthesize a cached reply or send a fresh request
// and arm the retry timer.
func (a *Action) issueStageQuery(target LogicalAddress) {
	if !target.ValidForQuery() {
		a.processedCount++
		a.checkAndProceed()
		return
	}

	a.timerClear()

	request, reply := a.stageOpcodes()
	if cached, ok := a.cache.Get(target, reply); ok {
		a.dispatchStageReply(cached)
		return
	}

	a.gw.Send(Frame{Source: a.localAddr, Destination: target, Opcode: request})
	a.timerArm()
}

// dispatchStageReply handles a cache hit: the cache is looked up under the
// stage's expected reply opcode, so a cached Feature Abort never reaches
// here and this is always the success path for the current stage, applied
// to the device currently being queried.
func (a *Action) dispatchStageReply(f Frame) {
	dev := a.devices[a.processedCount]

	switch a.state {
	case WaitingForPhysicalAddress:
		if phys, dt, ok := parsePhysicalAddressPayload(f.Params); ok {
			dev.PhysicalAddress = phys
			dev.DeviceType = dt
			dev.PortID = a.local.PortIDOf(phys)
			dev.DisplayName = defaultOSDName(dev.LogicalAddress, dt)
			a.local.NotifySwitch(dev.LogicalAddress, dt, phys)
		}
	case WaitingForOsdName:
		if name, ok := decodeASCII(f.Params); ok {
			dev.DisplayName = name
		} else {
			dev.DisplayName = defaultOSDName(dev.LogicalAddress, dev.DeviceType)
		}
	case WaitingForVendorId:
		if vendor, ok := parseVendorIDPayload(f.Params); ok {
			dev.VendorID = vendor
		} else {
			dev.VendorID = UnknownVendorID
		}
		a.notifyDiscovered(dev)
	}

	a.advance()
}

// resendCurrentQuery re-sends the query for the device at processedCount
// without consulting the cache — only the original issue path checks it.
func (a *Action) resendCurrentQuery() {
	target := a.devices[a.processedCount].LogicalAddress
	request, _ := a.stageOpcodes()
	a.gw.Send(Frame{Source: a.localAddr, Destination: target, Opcode: request})
	a.timerArm()
}

// removeDevice drops devices[idx] after its retry budget is exhausted.
// processedCount is deliberately left untouched: the structural shift
// means the same index now names the next device.
func (a *Action) removeDevice(idx int) {
	a.devices = append(a.devices[:idx], a.devices[idx+1:]...)
}

// advance resets the retry counter, moves to the next device, and drives
// the state machine forward. Called after any successful or abort-settled
// stage response.
func (a *Action) advance() {
	a.timeoutRetry = 0
	a.processedCount++
	a.checkAndProceed()
}

// OnCommand is the host's dispatch point for every inbound CEC frame. It
// returns true when the frame was this action's concern (matched or
// mismatched-and-dropped), false when the host should route it elsewhere.
func (a *Action) OnCommand(f Frame) bool {
	switch a.state {
	case WaitingForPhysicalAddress:
		if f.Opcode != OpReportPhysicalAddress {
			return false
		}
		return a.handlePhysicalAddressReply(f)

	case WaitingForOsdName:
		if f.Opcode != OpSetOSDName && f.Opcode != OpFeatureAbort {
			return false
		}
		return a.handleOsdNameReply(f)

	case WaitingForVendorId:
		if f.Opcode != OpDeviceVendorID && f.Opcode != OpFeatureAbort {
			return false
		}
		return a.handleVendorIdReply(f)

	default:
		return false
	}
}

// headMatches reports whether f was sent by the device currently being
// queried. A mismatch is logged here and dropped by the caller without
// advancing or cancelling the timer — the timer will eventually fire and
// retry (spec §4.2 ordering guarantee).
func (a *Action) headMatches(f Frame) bool {
	if a.processedCount < len(a.devices) && f.Source == a.devices[a.processedCount].LogicalAddress {
		return true
	}
	logx.Printf("discovery", "dropping opcode 0x%02X from %d: not from the device being queried", f.Opcode, f.Source)
	return false
}

func (a *Action) handlePhysicalAddressReply(f Frame) bool {
	if !a.headMatches(f) {
		return true // dropped: wrong source, rely on timeout/retry
	}

	phys, dt, ok := parsePhysicalAddressPayload(f.Params)
	if !ok {
		return true // malformed; rely on timeout/retry rather than guessing
	}

	dev := a.devices[a.processedCount]
	dev.PhysicalAddress = phys
	dev.DeviceType = dt
	dev.PortID = a.local.PortIDOf(phys)
	dev.DisplayName = defaultOSDName(dev.LogicalAddress, dt)
	a.local.NotifySwitch(dev.LogicalAddress, dt, phys)

	a.advance()
	return true
}

func (a *Action) handleOsdNameReply(f Frame) bool {
	if !a.headMatches(f) {
		return true
	}

	dev := a.devices[a.processedCount]

	if f.Opcode == OpFeatureAbort {
		if !isAbortOf(f, OpGiveOSDName) {
			return false
		}
		dev.DisplayName = defaultOSDName(dev.LogicalAddress, dev.DeviceType)
		a.advance()
		return true
	}

	if name, ok := decodeASCII(f.Params); ok {
		dev.DisplayName = name
	} else {
		dev.DisplayName = defaultOSDName(dev.LogicalAddress, dev.DeviceType)
	}
	a.advance()
	return true
}

func (a *Action) handleVendorIdReply(f Frame) bool {
	if !a.headMatches(f) {
		return true
	}

	dev := a.devices[a.processedCount]

	if f.Opcode == OpFeatureAbort {
		if !isAbortOf(f, OpGiveDeviceVendorID) {
			return false
		}
		dev.VendorID = UnknownVendorID
		a.notifyDiscovered(dev)
		a.advance()
		return true
	}

	if vendor, ok := parseVendorIDPayload(f.Params); ok {
		dev.VendorID = vendor
	} else {
		dev.VendorID = UnknownVendorID
	}
	a.notifyDiscovered(dev)
	a.advance()
	return true
}

// isAbortOf reports whether f is a Feature Abort rejecting rejected.
func isAbortOf(f Frame, rejected Opcode) bool {
	return len(f.Params) >= 1 && Opcode(f.Params[0]) == rejected
}

// parsePhysicalAddressPayload decodes a 3-byte Report Physical Address
// payload: 16-bit physical address, then an 8-bit device type.
func parsePhysicalAddressPayload(params []byte) (PhysicalAddress, DeviceType, bool) {
	if len(params) < 3 {
		return InvalidPhysicalAddress, DeviceInactive, false
	}
	phys := PhysicalAddress(uint16(params[0])<<8 | uint16(params[1]))
	return phys, DeviceType(params[2]), true
}

// parseVendorIDPayload decodes a 3-byte Device Vendor ID payload into a
// 24-bit vendor ID.
func parseVendorIDPayload(params []byte) (VendorID, bool) {
	if len(params) < 3 {
		return UnknownVendorID, false
	}
	return VendorID(uint32(params[0])<<16 | uint32(params[1])<<8 | uint32(params[2])), true
}

// decodeASCII validates params as US-ASCII and returns it as a string.
// Any byte with the high bit set fails the decode.
func decodeASCII(params []byte) (string, bool) {
	for _, b := range params {
		if b >= 0x80 {
			return "", false
		}
	}
	return string(params), true
}
