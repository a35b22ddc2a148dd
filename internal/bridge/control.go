package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/cecdiscoveryd/cecdiscoveryd/cec"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

// cecConn, cecMutex and cecReady mirror the teacher's globals: the manual
// control surface and the discovery Runner share one underlying connection.
// The manual-control handlers take cecMutex around every call on it; the
// discovery Runner's gateway calls the connection without taking it.
var (
	cecConn    *cec.Connection
	cecMutex   sync.Mutex
	cecReady   bool
	logHandler *LogHandler
	eventHub   *EventHub
	mqttRunner *Runner
)

// CECEvent is a real-time event surfaced from the CEC bus over SSE.
type CECEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventHub is a pub/sub hub for general bus events (key presses, raw
// commands, power changes, alerts). Discovery progress has its own
// websocket-backed Hub (hub.go); this one keeps the teacher's SSE surface
// for manual control and diagnostics.
type EventHub struct {
	mu         sync.RWMutex
	subs       map[chan CECEvent]struct{}
	bufferSize int
}

func NewEventHub(bufferSize int) *EventHub {
	return &EventHub{subs: make(map[chan CECEvent]struct{}), bufferSize: bufferSize}
}

func (h *EventHub) Subscribe() chan CECEvent {
	ch := make(chan CECEvent, h.bufferSize)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) Unsubscribe(ch chan CECEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) Publish(ev CECEvent) {
	ev.Timestamp = time.Now()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// LogHandler implements cec.CallbackHandler for the manual-control surface.
// Its OnCommand also forwards to the active discovery run, if any —
// Connection dispatches to a single handler, so this is the one place
// inbound frames enter both the event hub and internal/discovery.
type LogHandler struct {
	LogMessages []LogMessage
	mu          sync.RWMutex
	maxMessages int

	runnerMu sync.RWMutex
	runner   *Runner
}

type LogMessage struct {
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

func NewLogHandler() *LogHandler {
	return &LogHandler{LogMessages: make([]LogMessage, 0), maxMessages: 100}
}

// SetRunner wires the active discovery Runner into the command path. Called
// once at startup, after both the connection and the Runner exist.
func (l *LogHandler) SetRunner(r *Runner) {
	l.runnerMu.Lock()
	l.runner = r
	l.runnerMu.Unlock()
}

func (l *LogHandler) OnLogMessage(level cec.LogLevel, timestamp int64, message string) {
	l.mu.Lock()
	logTime := time.Unix(0, timestamp*int64(time.Millisecond))
	logMsg := LogMessage{Level: level.String(), Timestamp: logTime, Message: message}
	l.LogMessages = append(l.LogMessages, logMsg)
	if len(l.LogMessages) > l.maxMessages {
		l.LogMessages = l.LogMessages[1:]
	}
	l.mu.Unlock()

	if level != cec.LogLevelTraffic && level != cec.LogLevelDebug {
		logx.Printf("cec", "%s", message)
	}
}

func (l *LogHandler) OnKeyPress(key cec.Keycode, duration uint32) {
	if eventHub != nil {
		eventHub.Publish(CECEvent{Type: "key_press", Data: map[string]interface{}{
			"keycode": int(key), "duration": duration,
		}})
	}
}

func (l *LogHandler) OnCommand(command *cec.Command) {
	l.runnerMu.RLock()
	runner := l.runner
	l.runnerMu.RUnlock()
	if runner != nil {
		runner.HandleCommand(command)
	}

	if eventHub == nil {
		return
	}
	data := map[string]interface{}{
		"initiator":   int(command.Initiator),
		"destination": int(command.Destination),
		"opcode":      fmt.Sprintf("0x%02X", command.Opcode),
	}
	if command.Opcode == cec.OpcodeReportPowerStatus && len(command.Parameters) >= 1 {
		eventHub.Publish(CECEvent{Type: "power_change", Data: map[string]interface{}{
			"address": int(command.Initiator), "status": powerStatusFromByte(command.Parameters[0]),
		}})
	}
	if command.Opcode == cec.OpcodeStandby {
		eventHub.Publish(CECEvent{Type: "power_change", Data: map[string]interface{}{
			"address": int(command.Initiator), "status": "standby",
		}})
	}
	eventHub.Publish(CECEvent{Type: "command", Data: data})
}

func (l *LogHandler) OnConfigurationChanged(config *cec.Configuration) {
	logx.Printf("cec", "configuration changed: %s", config.DeviceName)
}

func (l *LogHandler) OnAlert(alert cec.Alert, param cec.Parameter) {
	if eventHub != nil {
		eventHub.Publish(CECEvent{Type: "alert", Data: map[string]interface{}{
			"alert": int(alert), "param": param.Value,
		}})
	}
}

func (l *LogHandler) OnMenuStateChanged(state cec.MenuState) bool { return true }

func (l *LogHandler) OnSourceActivated(address cec.LogicalAddress, activated bool) {
	if eventHub != nil {
		eventHub.Publish(CECEvent{Type: "source_activated", Data: map[string]interface{}{
			"address": int(address), "activated": activated,
		}})
	}
}

func powerStatusFromByte(b uint8) string {
	switch b {
	case 0x00:
		return "on"
	case 0x01:
		return "standby"
	case 0x02:
		return "transitioning_to_on"
	case 0x03:
		return "transitioning_to_standby"
	default:
		return "unknown"
	}
}

func (l *LogHandler) GetRecentLogs() []LogMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]LogMessage, len(l.LogMessages))
	copy(result, l.LogMessages)
	return result
}

// Init sets up the event hub and log handler independent of whether a CEC
// connection exists yet, so /api/logs and /api/events can answer before
// the adapter goroutine finishes. Call once at startup.
func Init() {
	eventHub = NewEventHub(64)
	logHandler = NewLogHandler()
}

// PublishCEC installs a live CEC connection and its discovery Runner as the
// package's active state, the point at which CEC-dependent HTTP and MQTT
// handlers stop answering 503/"adapter not available". Called once by
// bringUpCEC after OpenAdapter succeeds.
func PublishCEC(conn *cec.Connection, runner *Runner) {
	conn.SetCallbackHandler(logHandler)
	logHandler.SetRunner(runner)

	cecMutex.Lock()
	cecConn = conn
	cecReady = true
	mqttRunner = runner
	cecMutex.Unlock()
}

// CloseCEC closes the underlying CEC connection, if one was ever
// established. Safe to call when CEC never came up.
func CloseCEC() {
	cecMutex.Lock()
	defer cecMutex.Unlock()
	if cecConn != nil {
		cecConn.Close()
		cecReady = false
	}
}

// ── JSON response helpers ───────────────────────────────────────────────

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Status: "error", Message: message})
}

func respondSuccess(w http.ResponseWriter, message string, data interface{}) {
	respondJSON(w, http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

func requireCEC(w http.ResponseWriter) bool {
	cecMutex.Lock()
	ready := cecReady
	cecMutex.Unlock()
	if !ready {
		respondError(w, http.StatusServiceUnavailable, "CEC adapter not available")
		return false
	}
	return true
}

// ── Manual device control handlers (supplemented ambient feature: these
// are unchanged CEC bus operations the discovery action doesn't perform,
// kept so an operator can act on what discovery just found) ────────────

func deviceToMap(dev *cec.Device) map[string]interface{} {
	hdmiPort := uint8(0)
	if dev.PhysicalAddress != 0 && dev.PhysicalAddress != 0xFFFF {
		hdmiPort = uint8((dev.PhysicalAddress >> 12) & 0xF)
	}
	return map[string]interface{}{
		"logical_address":  int(dev.LogicalAddress),
		"address_name":     dev.LogicalAddress.String(),
		"physical_address": cec.PhysicalAddressToString(dev.PhysicalAddress),
		"device_type":      cec.DeviceTypeForAddress(dev.LogicalAddress).String(),
		"hdmi_port":        int(hdmiPort),
		"vendor_id":        fmt.Sprintf("0x%06X", dev.VendorID),
		"vendor_name":      cec.GetVendorName(dev.VendorID),
		"cec_version":      dev.CECVersion.String(),
		"power_status":     dev.PowerStatus.String(),
		"osd_name":         dev.OSDName,
		"menu_language":    dev.MenuLanguage,
		"is_active":        dev.IsActive,
		"is_active_source": dev.IsActiveSource,
	}
}

func getDevicesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	rescan := r.URL.Query().Get("rescan")

	cecMutex.Lock()
	if rescan == "1" || strings.EqualFold(rescan, "true") {
		cecConn.RescanDevices()
	}
	addresses := cecConn.GetActiveDevices()
	cecMutex.Unlock()

	deadline := time.After(20 * time.Second)
	result := make([]map[string]interface{}, 0, len(addresses))

	for _, addr := range addresses {
		select {
		case <-deadline:
			respondSuccess(w, fmt.Sprintf("devices retrieved (partial: %d of %d, CEC bus slow)", len(result), len(addresses)), result)
			return
		default:
		}

		cecMutex.Lock()
		dev, err := cecConn.GetDeviceInfo(addr)
		cecMutex.Unlock()

		if err == nil {
			result = append(result, deviceToMap(dev))
		}
	}

	respondSuccess(w, "devices retrieved", result)
}

func getDeviceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	addr, err := parseLogicalAddress(mux.Vars(r)["address"], -1)
	if err != nil || addr < 0 {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()

	dev, err := cecConn.GetDeviceInfo(cec.LogicalAddress(addr))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "device info retrieved", deviceToMap(dev))
}

func powerOnHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	addr, err := parseLogicalAddress(mux.Vars(r)["address"], 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.PowerOn(cec.LogicalAddress(addr)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, fmt.Sprintf("power on sent to device %d", addr), nil)
}

func powerOffHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	addr, err := parseLogicalAddress(mux.Vars(r)["address"], 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.Standby(cec.LogicalAddress(addr)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, fmt.Sprintf("standby sent to device %d", addr), nil)
}

func getPowerStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	addr, err := parseLogicalAddress(mux.Vars(r)["address"], 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	status, err := cecConn.GetDevicePowerStatus(cec.LogicalAddress(addr))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "power status retrieved", map[string]interface{}{"address": addr, "status": status.String()})
}

func volumeUpHandler(w http.ResponseWriter, r *http.Request)   { sendVolumeKey(w, r, cec.KeycodeVolumeUp, "volume up") }
func volumeDownHandler(w http.ResponseWriter, r *http.Request) { sendVolumeKey(w, r, cec.KeycodeVolumeDown, "volume down") }
func muteHandler(w http.ResponseWriter, r *http.Request)       { sendVolumeKey(w, r, cec.KeycodeMute, "mute") }

func sendVolumeKey(w http.ResponseWriter, r *http.Request, key cec.Keycode, label string) {
	if !requireCEC(w) {
		return
	}
	addrStr := mux.Vars(r)["address"]

	cecMutex.Lock()
	defer cecMutex.Unlock()

	if addrStr != "" {
		addr, err := strconv.Atoi(addrStr)
		if err != nil || addr < 0 || addr > 15 {
			respondError(w, http.StatusBadRequest, "invalid address")
			return
		}
		if err := cecConn.SendVolumeKey(cec.LogicalAddress(addr), key); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondSuccess(w, fmt.Sprintf("%s sent to device %d", label, addr), nil)
		return
	}

	var err error
	switch key {
	case cec.KeycodeVolumeUp:
		err = cecConn.VolumeUp(true)
	case cec.KeycodeVolumeDown:
		err = cecConn.VolumeDown(true)
	default:
		err = cecConn.AudioToggleMute()
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, label+" command sent", nil)
}

func getActiveSourceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	cecMutex.Lock()
	defer cecMutex.Unlock()
	addr, err := cecConn.GetActiveSource()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "active source retrieved", map[string]interface{}{"address": int(addr), "name": addr.String()})
}

func setActiveSourceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	addr, err := parseLogicalAddress(mux.Vars(r)["address"], -1)
	if err != nil || addr < 0 {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.SwitchToDevice(cec.LogicalAddress(addr)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, fmt.Sprintf("switched to device %d", addr), nil)
}

func setHDMIPortHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	port, err := strconv.Atoi(mux.Vars(r)["port"])
	if err != nil || port < 1 || port > 15 {
		respondError(w, http.StatusBadRequest, "invalid HDMI port (must be 1-15)")
		return
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.SwitchToHDMIPort(uint8(port)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, fmt.Sprintf("switched to HDMI port %d", port), nil)
}

var namedKeys = map[string]cec.Keycode{
	"up": cec.KeycodeUp, "down": cec.KeycodeDown, "left": cec.KeycodeLeft, "right": cec.KeycodeRight,
	"select": cec.KeycodeSelect, "enter": cec.KeycodeEnter, "back": cec.KeycodeExit, "home": cec.KeycodeRootMenu,
	"menu": cec.KeycodeSetupMenu, "play": cec.KeycodePlay, "pause": cec.KeycodePause, "stop": cec.KeycodeStop,
}

func sendKeyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	var req struct {
		Address int    `json:"address"`
		Key     string `json:"key"`
		Keycode int    `json:"keycode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address < 0 || req.Address > 15 {
		respondError(w, http.StatusBadRequest, "invalid logical address")
		return
	}
	if req.Key == "" && req.Keycode == 0 {
		respondError(w, http.StatusBadRequest, "either 'key' or 'keycode' must be provided")
		return
	}

	var keycode cec.Keycode
	if req.Key != "" {
		k, ok := namedKeys[req.Key]
		if !ok {
			respondError(w, http.StatusBadRequest, "unsupported key name")
			return
		}
		keycode = k
	} else {
		if req.Keycode < 0 || req.Keycode > 0xFF {
			respondError(w, http.StatusBadRequest, "keycode must be in range 0-255")
			return
		}
		keycode = cec.Keycode(req.Keycode)
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.SendButton(cec.LogicalAddress(req.Address), keycode); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "key command sent", nil)
}

const maxCECParameters = 14

func rawCommandHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	var req struct {
		Initiator   int     `json:"initiator"`
		Destination int     `json:"destination"`
		Opcode      int     `json:"opcode"`
		Parameters  []uint8 `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Initiator < 0 || req.Initiator > 15 || req.Destination < 0 || req.Destination > 15 {
		respondError(w, http.StatusBadRequest, "logical addresses must be 0-15")
		return
	}
	if req.Opcode < 0 || req.Opcode > 0xFF {
		respondError(w, http.StatusBadRequest, "opcode must be 0-255")
		return
	}
	if len(req.Parameters) > maxCECParameters {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("too many parameters (max %d)", maxCECParameters))
		return
	}

	cmd := &cec.Command{
		Initiator:   cec.LogicalAddress(req.Initiator),
		Destination: cec.LogicalAddress(req.Destination),
		Opcode:      cec.Opcode(req.Opcode),
		OpcodeSet:   true,
		Parameters:  req.Parameters,
	}

	cecMutex.Lock()
	defer cecMutex.Unlock()
	if err := cecConn.Transmit(cmd); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "raw command sent", nil)
}

func getLogsHandler(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, "logs retrieved", logHandler.GetRecentLogs())
}

func eventsSSEHandler(w http.ResponseWriter, r *http.Request) {
	if eventHub == nil {
		respondError(w, http.StatusInternalServerError, "event hub not initialized")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := eventHub.Subscribe()
	defer eventHub.Unsubscribe(ch)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			body, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", body)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func getTopologyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	cecMutex.Lock()
	topo := cecConn.GetBusTopology()
	ownAddrs := cecConn.GetLogicalAddresses()
	cecMutex.Unlock()

	type portDetail struct {
		Port    int      `json:"port"`
		Devices []string `json:"devices"`
	}
	ports := make([]portDetail, 0, len(topo.ActivePorts))
	for _, p := range topo.ActivePorts {
		names := make([]string, 0, len(p.Devices))
		for _, addr := range p.Devices {
			cecMutex.Lock()
			name, _ := cecConn.GetDeviceOSDName(addr)
			cecMutex.Unlock()
			if name == "" {
				name = addr.String()
			}
			names = append(names, name)
		}
		ports = append(ports, portDetail{Port: int(p.Port), Devices: names})
	}

	ownAddrInts := make([]int, len(ownAddrs))
	for i, a := range ownAddrs {
		ownAddrInts[i] = int(a)
	}

	respondSuccess(w, "bus topology retrieved", map[string]interface{}{
		"own_addresses":    ownAddrInts,
		"own_port":         int(topo.OwnPort),
		"known_port_count": int(topo.KnownPortCount),
		"active_ports":     ports,
	})
}

func getAudioStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !requireCEC(w) {
		return
	}
	cecMutex.Lock()
	volume, muted, err := cecConn.GetAudioStatus()
	cecMutex.Unlock()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(w, "audio status retrieved", map[string]interface{}{"volume": int(volume), "muted": muted})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	cecMutex.Lock()
	ready := cecReady
	cecMutex.Unlock()
	respondSuccess(w, "ok", map[string]interface{}{"cec_ready": ready})
}

// ── MQTT settings API ───────────────────────────────────────────────────

func getMQTTSettingsHandler(w http.ResponseWriter, r *http.Request) {
	cfg := CurrentConfig().MQTT

	maskedPass := ""
	if cfg.Pass != "" {
		maskedPass = "***"
	}

	mqttMu.Lock()
	connected := mqttClient != nil && mqttClient.IsConnected()
	mqttMu.Unlock()

	respondSuccess(w, "MQTT settings", map[string]interface{}{
		"broker":    cfg.Broker,
		"user":      cfg.User,
		"pass":      maskedPass,
		"prefix":    cfg.Prefix,
		"connected": connected,
	})
}

func postMQTTSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Broker string `json:"broker"`
		User   string `json:"user"`
		Pass   string `json:"pass"`
		Prefix string `json:"prefix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prefix == "" {
		req.Prefix = "cecdiscoveryd"
	}

	cfg := CurrentConfig()
	if req.Pass == "***" {
		req.Pass = cfg.MQTT.Pass
	}
	cfg.MQTT = MQTTConfig{Broker: req.Broker, User: req.User, Pass: req.Pass, Prefix: req.Prefix}

	if err := SaveConfig(cfg); err != nil {
		logx.Printf("mqtt", "failed to save config: %v", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save config: %v", err))
		return
	}

	if req.Broker != "" {
		StartMQTT(req.Broker, req.User, req.Pass, req.Prefix, mqttRunner)
	} else {
		StopMQTT()
	}

	respondSuccess(w, "MQTT settings saved", nil)
}

func parseLogicalAddress(raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	addr, err := strconv.Atoi(raw)
	if err != nil || addr < 0 || addr > 15 {
		return 0, fmt.Errorf("invalid logical address %q", raw)
	}
	return addr, nil
}
