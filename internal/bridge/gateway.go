// Package bridge wires the pure-Go discovery state machine (internal/discovery)
// to the real libcec-backed transport (cec) and exposes it over HTTP, a
// websocket stream and MQTT, the same shape as the teacher's capi HTTP
// bridge did for manual CEC control.
package bridge

import (
	"sync"
	"time"

	"github.com/cecdiscoveryd/cecdiscoveryd/cec"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

// dispatcher serializes everything the discovery action sees — inbound
// frames from the libcec callback thread, poll-sweep completions, and
// timer ticks — onto one goroutine, matching the single dispatcher-thread
// model spec'd for the action (no locks inside Action itself).
type dispatcher struct {
	events chan func()
}

func newDispatcher() *dispatcher {
	d := &dispatcher{events: make(chan func(), 256)}
	go d.run()
	return d
}

func (d *dispatcher) run() {
	for fn := range d.events {
		fn()
	}
}

func (d *dispatcher) post(fn func()) {
	d.events <- fn
}

// cecGateway adapts *cec.Connection to discovery.Gateway. One instance
// backs exactly one in-flight Action at a time; see discovery_api.go.
type cecGateway struct {
	conn      *cec.Connection
	localAddr discovery.LogicalAddress
	disp      *dispatcher

	mu      sync.Mutex
	action  *discovery.Action
	timer   *time.Timer
	timerID uint64 // bumped on every ArmTimer/ClearTimer to invalidate in-flight AfterFuncs
}

func newCECGateway(conn *cec.Connection, localAddr discovery.LogicalAddress, disp *dispatcher) *cecGateway {
	return &cecGateway{conn: conn, localAddr: localAddr, disp: disp}
}

// bind attaches the action this gateway drives. Called once per run, right
// after the Action is constructed (see discovery_api.go), so timer and
// poll callbacks have somewhere to deliver events.
func (g *cecGateway) bind(a *discovery.Action) {
	g.mu.Lock()
	g.action = a
	g.mu.Unlock()
}

// PollDevices performs the bus sweep via a rescan + active-device query.
// libcec doesn't expose raw per-address POLL framing through cecc.h, so
// the sweep is approximated with its topology rescan, reordered per flags.
func (g *cecGateway) PollDevices(flags discovery.PollFlags, retries int) {
	go func() {
		var acked []discovery.LogicalAddress

		for attempt := 0; attempt <= retries; attempt++ {
			if err := g.conn.RescanDevices(); err != nil {
				logx.Printf("discovery", "poll sweep attempt %d failed: %v", attempt, err)
				continue
			}
			addrs := g.conn.GetActiveDevices()
			acked = acked[:0]
			for _, a := range addrs {
				if flags.RemotesOnly && a == cec.LogicalAddress(g.localAddr) {
					continue
				}
				acked = append(acked, discovery.LogicalAddress(a))
			}
			if len(acked) > 0 {
				break
			}
		}

		if flags.ReverseOrder {
			for i, j := 0, len(acked)-1; i < j; i, j = i+1, j-1 {
				acked[i], acked[j] = acked[j], acked[i]
			}
		}

		result := acked
		g.disp.post(func() {
			g.mu.Lock()
			a := g.action
			g.mu.Unlock()
			if a != nil {
				a.OnPollComplete(result)
			}
		})
	}()
}

// Send transmits a discovery query frame from the local device.
func (g *cecGateway) Send(f discovery.Frame) {
	cmd := &cec.Command{
		Initiator:   cec.LogicalAddress(f.Source),
		Destination: cec.LogicalAddress(f.Destination),
		Opcode:      cec.Opcode(f.Opcode),
		OpcodeSet:   true,
		Parameters:  f.Params,
	}
	if err := g.conn.Transmit(cmd); err != nil {
		logx.Printf("discovery", "send opcode 0x%02X to %d failed: %v", f.Opcode, f.Destination, err)
	}
}

// ArmTimer schedules a single pending timeout. Arming a new one implicitly
// cancels whatever was previously pending (ActionTimer, spec C2).
func (g *cecGateway) ArmTimer(stateTag discovery.State, timeout time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timerID++
	id := g.timerID

	g.timer = time.AfterFunc(timeout, func() {
		g.mu.Lock()
		stale := id != g.timerID
		a := g.action
		g.mu.Unlock()
		if stale || a == nil {
			return
		}
		g.disp.post(func() { a.OnTimer(stateTag) })
	})
}

// ClearTimer cancels the pending timeout, if any.
func (g *cecGateway) ClearTimer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.timerID++
}

// deliver converts an inbound cec.Command into a discovery.Frame, feeds it
// to the cache (every accepted inbound frame is cached per spec §4.7), and
// hands it to the bound action. Called from the libcec callback thread, so
// both the cache write and the action call are posted onto the dispatcher,
// the goroutine on which the action also reads the cache.
func (g *cecGateway) deliver(cache *discovery.MessageCache, cmd *cec.Command) {
	frame := discovery.Frame{
		Source:      discovery.LogicalAddress(cmd.Initiator),
		Destination: discovery.LogicalAddress(cmd.Destination),
		Opcode:      discovery.Opcode(cmd.Opcode),
		Params:      cmd.Parameters,
	}

	g.disp.post(func() {
		cache.Put(frame.Source, frame.Opcode, frame)
		g.mu.Lock()
		a := g.action
		g.mu.Unlock()
		if a != nil {
			a.OnCommand(frame)
		}
	})
}
