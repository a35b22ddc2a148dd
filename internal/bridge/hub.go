package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

// DeviceView is the wire shape of a discovered device, presentation-layer
// only: vendor names and hex formatting live here, never in internal/discovery.
type DeviceView struct {
	LogicalAddress  int    `json:"logical_address"`
	PhysicalAddress string `json:"physical_address"`
	PortID          int    `json:"port_id"`
	DeviceType      int    `json:"device_type"`
	VendorID        string `json:"vendor_id"`
	VendorName      string `json:"vendor_name,omitempty"`
	DisplayName     string `json:"display_name"`
}

func viewOf(d discovery.DeviceInfo) DeviceView {
	v := DeviceView{
		LogicalAddress:  int(d.LogicalAddress),
		PhysicalAddress: formatPhysicalAddress(d.PhysicalAddress),
		PortID:          int(d.PortID),
		DeviceType:      int(d.DeviceType),
		VendorID:        formatVendorID(d.VendorID),
		DisplayName:     d.DisplayName,
	}
	if name, ok := vendorNames[d.VendorID]; ok {
		v.VendorName = name
	}
	return v
}

func formatPhysicalAddress(p discovery.PhysicalAddress) string {
	if p == discovery.InvalidPhysicalAddress {
		return "f.f.f.f"
	}
	v := uint16(p)
	return fmt.Sprintf("%d.%d.%d.%d", (v>>12)&0xF, (v>>8)&0xF, (v>>4)&0xF, v&0xF)
}

func formatVendorID(v discovery.VendorID) string {
	return fmt.Sprintf("0x%06X", uint32(v))
}

// vendorNames resolves the handful of vendor IDs CEC devices commonly
// report to a human-readable brand, purely for display — discovery itself
// only ever deals in the raw 24-bit ID (spec §9 Design Notes).
var vendorNames = map[discovery.VendorID]string{
	0x000039: "Toshiba",
	0x0000F0: "Samsung",
	0x0005CD: "Denon",
	0x000CB8: "Medion",
	0x001582: "Pulse Eight",
	0x008045: "Panasonic",
	0x6B746D: "Vizio",
	0x9C645E: "Harman Kardon",
}

// streamEvent is the JSON message shape pushed over the websocket.
type streamEvent struct {
	Type    string       `json:"type"` // "device" or "done"
	Device  *DeviceView  `json:"device,omitempty"`
	Devices []DeviceView `json:"devices,omitempty"`
}

// Hub fans discovery progress and completion out to every open
// /api/discovery/stream websocket connection, mirroring the teacher's
// EventHub pub/sub shape but over a websocket instead of SSE.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub builds an empty Hub. Origin checking is left permissive, matching
// the teacher's bridge which never restricted CORS either — this is a LAN
// control-plane endpoint, not a public one.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and registers it until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Printf("discovery", "websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Drain and discard inbound messages; this is a push-only stream. When
	// the read fails the client has gone away.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) broadcast(ev streamEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go h.remove(conn)
		}
	}
}

func (h *Hub) broadcastDevice(d discovery.DeviceInfo) {
	view := viewOf(d)
	h.broadcast(streamEvent{Type: "device", Device: &view})
}

func (h *Hub) broadcastDone(devices []discovery.DeviceInfo) {
	views := make([]DeviceView, len(devices))
	for i, d := range devices {
		views[i] = viewOf(d)
	}
	h.broadcast(streamEvent{Type: "done", Devices: views})
}
