package bridge

import (
	"errors"
	"sync"

	"github.com/cecdiscoveryd/cecdiscoveryd/cec"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

// ErrDiscoveryRunning is returned by Runner.Start when a previous run
// hasn't invoked its done callback yet — Action.Start() itself has no
// idempotency guard (spec §4.1 requires a fresh Action per run), so the
// Runner is what enforces "one run at a time" at the host level.
var ErrDiscoveryRunning = errors.New("discovery: a run is already in progress")

// Runner owns exactly one in-flight discovery.Action, wiring it to the
// libcec transport via cecGateway and fanning its results out to the
// websocket hub and the MQTT bridge.
type Runner struct {
	conn            *cec.Connection
	localAddr       discovery.LogicalAddress
	localDeviceType discovery.DeviceType
	cfg             discovery.Config
	cache           *discovery.MessageCache
	gw              *cecGateway
	disp            *dispatcher
	hub             *Hub
	onDone          func([]discovery.DeviceInfo)

	mu         sync.Mutex
	running    bool
	lastResult []discovery.DeviceInfo
	hasResult  bool
}

// NewRunner builds a Runner bound to a live CEC connection. localAddr and
// localDeviceType describe the adapter's own claimed identity, used to
// pick the LocalDevice capability variant (spec §9) and to tag outbound
// frames.
func NewRunner(conn *cec.Connection, localAddr discovery.LogicalAddress, localDeviceType discovery.DeviceType, cfg discovery.Config, hub *Hub, onDone func([]discovery.DeviceInfo)) *Runner {
	disp := newDispatcher()
	return &Runner{
		conn:            conn,
		localAddr:       localAddr,
		localDeviceType: localDeviceType,
		cfg:             cfg,
		cache:           discovery.NewMessageCache(),
		gw:              newCECGateway(conn, localAddr, disp),
		disp:            disp,
		hub:             hub,
		onDone:          onDone,
	}
}

// HandleCommand feeds an inbound CEC command to the active discovery run,
// if any. Wired as a hook off the shared LogHandler (control.go) rather
// than installed as its own cec.CallbackHandler, since a Connection only
// dispatches to one handler at a time.
func (r *Runner) HandleCommand(command *cec.Command) {
	r.gw.deliver(r.cache, command)
}

// Start begins a fresh discovery run. It fails with ErrDiscoveryRunning if
// the previous run hasn't completed yet.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrDiscoveryRunning
	}
	r.running = true
	r.mu.Unlock()

	local := newLocalDevice(r.localDeviceType, r.notifySwitch, r.flushDelayed)
	action := discovery.New(r.gw, local, r.cache, &runnerCallback{r: r}, r.cfg, r.localAddr)
	r.gw.bind(action)
	r.disp.post(func() { action.Start() })
	return nil
}

// LastResult returns the most recently completed inventory, if any.
func (r *Runner) LastResult() ([]discovery.DeviceInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastResult, r.hasResult
}

func (r *Runner) notifySwitch(logical discovery.LogicalAddress, dt discovery.DeviceType, phys discovery.PhysicalAddress) {
	logx.Printf("discovery", "cec switch: logical=%d type=%d physical=0x%04X", logical, dt, phys)
}

func (r *Runner) flushDelayed() {
	logx.Printf("discovery", "flushing messages deferred during discovery")
}

// runnerCallback implements discovery.Callback, recording the final
// inventory and fanning progress/completion out to the hub and MQTT.
type runnerCallback struct{ r *Runner }

func (c *runnerCallback) OnDiscoveryDone(devices []discovery.DeviceInfo) {
	c.r.mu.Lock()
	c.r.lastResult = devices
	c.r.hasResult = true
	c.r.running = false
	c.r.mu.Unlock()

	logx.Printf("discovery", "run complete: %d device(s)", len(devices))

	if c.r.hub != nil {
		c.r.hub.broadcastDone(devices)
	}
	if c.r.onDone != nil {
		c.r.onDone(devices)
	}
}

func (c *runnerCallback) OnDeviceDiscovered(device discovery.DeviceInfo) {
	if c.r.hub != nil {
		c.r.hub.broadcastDevice(device)
	}
}
