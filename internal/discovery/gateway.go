package discovery

import "time"

// PollFlags controls how the bus-level polling sweep is performed.
type PollFlags struct {
	ReverseOrder bool // poll candidate addresses in reverse numeric order
	RemotesOnly  bool // skip the local device's own claimed addresses
}

// Gateway is everything the action needs from the host: send a poll sweep
// or a query frame, and arm/clear the single pending timeout. It is the
// seam named BusGateway in the design (C3) — an external collaborator the
// action never assumes anything about beyond this interface. Replies,
// poll completion and timer ticks are delivered back into the action by
// the host calling OnCommand / OnPollComplete / OnTimer; Gateway itself is
// write-only from the action's point of view.
type Gateway interface {
	// PollDevices requests a polling sweep over candidate logical
	// addresses. retries is the number of times the host should retry an
	// unacknowledged poll before giving up on that address. The result
	// reaches the action asynchronously via Action.OnPollComplete.
	PollDevices(flags PollFlags, retries int)

	// Send transmits frame from the local device to frame.Destination.
	Send(frame Frame)

	// ArmTimer schedules a single timeout tagged with stateTag. A later
	// Action.OnTimer(stateTag) call after timeout elapses is expected;
	// the action compares the tag to its current state to detect
	// staleness (see spec §5).
	ArmTimer(stateTag State, timeout time.Duration)

	// ClearTimer cancels any pending timer armed by ArmTimer. Safe to call
	// when no timer is armed.
	ClearTimer()
}
