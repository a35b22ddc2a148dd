package discovery

import "time"

// State is one of the four discovery stages plus the None/Finished
// bookends. It doubles as the tag threaded through Gateway.ArmTimer /
// Action.OnTimer so a stale timer (one that fired for a state the action
// has already left) can be told apart from a live one.
type State int

const (
	None State = iota
	WaitingForPolling
	WaitingForPhysicalAddress
	WaitingForOsdName
	WaitingForVendorId
	Finished
)

func (s State) String() string {
	switch s {
	case None:
		return "None"
	case WaitingForPolling:
		return "WaitingForPolling"
	case WaitingForPhysicalAddress:
		return "WaitingForPhysicalAddress"
	case WaitingForOsdName:
		return "WaitingForOsdName"
	case WaitingForVendorId:
		return "WaitingForVendorId"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Callback is the one-shot (plus zero-or-more progress) continuation a
// discovery run is built with. OnDiscoveryDone fires exactly once per
// Start(); OnDeviceDiscovered is a progress hook the action is permitted,
// but not required, to invoke per spec — this implementation invokes it
// once per device, when that device's place in the pipeline is settled
// (VendorId stage completed, by success or feature-abort).
type Callback interface {
	OnDiscoveryDone(devices []DeviceInfo)
	OnDeviceDiscovered(device DeviceInfo)
}

// Config carries the three tunables the action is constructed with.
type Config struct {
	PollRetries  int           // DEVICE_POLLING_RETRY
	QueryRetries int           // TIMEOUT_RETRY, per stage per device
	Timeout      time.Duration // TIMEOUT_MS
}

// DefaultConfig returns the recommended defaults from spec §4.4.
func DefaultConfig() Config {
	return Config{
		PollRetries:  3,
		QueryRetries: 5,
		Timeout:      2000 * time.Millisecond,
	}
}

// Action is the DiscoveryAction façade (C6): the lifecycle handle a host
// starts, feeds inbound frames and timer ticks into, and cancels. All of
// its methods are meant to be called serially by one dispatcher goroutine
// (see spec §5) — it keeps no internal locks.
type Action struct {
	gw    Gateway
	local LocalDevice
	cache *MessageCache
	cb    Callback
	cfg   Config

	localAddr LogicalAddress

	state          State
	devices        []*DeviceRecord
	processedCount int
	timeoutRetry   int
	timerArmed     bool
}

// New constructs a fresh discovery action. localAddr is the logical
// address discovery queries are sent from. A new Action must be built for
// every run — Start does not support being called twice on the same value
// (see spec §4.1).
func New(gw Gateway, local LocalDevice, cache *MessageCache, cb Callback, cfg Config, localAddr LogicalAddress) *Action {
	return &Action{
		gw:        gw,
		local:     local,
		cache:     cache,
		cb:        cb,
		cfg:       cfg,
		localAddr: localAddr,
		state:     None,
	}
}

// Start clears any previous inventory, begins the polling sweep, and
// returns true to mean "accepted". It does not block on the sweep: the
// result arrives later via OnPollComplete.
func (a *Action) Start() bool {
	a.devices = nil
	a.processedCount = 0
	a.timeoutRetry = 0
	a.state = WaitingForPolling
	a.gw.PollDevices(PollFlags{ReverseOrder: true, RemotesOnly: true}, a.cfg.PollRetries)
	return true
}

// OnPollComplete is the host's callback for the bus-level polling sweep
// requested by Start. acked is the ordered list of logical addresses that
// responded.
func (a *Action) OnPollComplete(acked []LogicalAddress) {
	if len(acked) == 0 {
		a.wrapUp()
		return
	}

	a.devices = make([]*DeviceRecord, len(acked))
	for i, addr := range acked {
		a.devices[i] = newDeviceRecord(addr)
	}
	a.processedCount = 0
	a.state = WaitingForPhysicalAddress
	a.checkAndProceed()
}

// OnTimer handles a timer tick tagged stateTag. A tag that doesn't match
// the action's current state is stale — the matching reply or a later
// timer already resolved this wait — and is ignored.
func (a *Action) OnTimer(stateTag State) {
	if stateTag != a.state {
		return
	}
	a.timerArmed = false

	if a.processedCount >= len(a.devices) {
		return
	}

	if a.timeoutRetry < a.cfg.QueryRetries {
		a.timeoutRetry++
		a.resendCurrentQuery()
		return
	}

	a.timeoutRetry = 0
	a.removeDevice(a.processedCount)
	a.checkAndProceed()
}

// Cancel moves the action to Finished without invoking the done callback.
// Safe to call at any point; clears any pending timer.
func (a *Action) Cancel() {
	a.timerClear()
	a.state = Finished
	a.devices = nil
}

// checkAndProceed is the StageController's single internal primitive
// (spec §4.2): wrap up on an empty device set, advance to the next stage
// once every device has been processed, or issue the next query.
func (a *Action) checkAndProceed() {
	if len(a.devices) == 0 {
		a.wrapUp()
		return
	}

	if a.processedCount == len(a.devices) {
		a.processedCount = 0
		switch a.state {
		case WaitingForPhysicalAddress:
			a.state = WaitingForOsdName
		case WaitingForOsdName:
			a.state = WaitingForVendorId
		case WaitingForVendorId:
			a.wrapUp()
			return
		default:
			a.wrapUp()
			return
		}
		a.checkAndProceed()
		return
	}

	a.issueStageQuery(a.devices[a.processedCount].LogicalAddress)
}

// wrapUp projects the surviving records into DeviceInfo values, invokes
// the done callback exactly once, and asks the local device to flush
// anything it deferred during the run (a no-op on non-TV variants).
func (a *Action) wrapUp() {
	result := make([]DeviceInfo, len(a.devices))
	for i, d := range a.devices {
		result[i] = d.snapshot()
	}

	a.timerClear()
	a.state = Finished
	a.devices = nil

	if a.cb != nil {
		a.cb.OnDiscoveryDone(result)
	}
	a.local.FlushDelayedMessages()
}

func (a *Action) timerArm() {
	a.gw.ArmTimer(a.state, a.cfg.Timeout)
	a.timerArmed = true
}

func (a *Action) timerClear() {
	if a.timerArmed {
		a.gw.ClearTimer()
		a.timerArmed = false
	}
}

func (a *Action) notifyDiscovered(d *DeviceRecord) {
	if a.cb != nil {
		a.cb.OnDeviceDiscovered(d.snapshot())
	}
}
