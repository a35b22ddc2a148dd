package bridge

import (
	"net/http"

	"github.com/gorilla/mux"
)

// discoveryStartHandler kicks off a fresh bus scan. Returns 202 once the
// run has been accepted; the result shows up on GET /api/discovery/result
// or over the websocket stream, never in this response body. Reads the
// active Runner from package state (set by PublishCEC) rather than a
// closed-over value, since the CEC connection may come up after the
// router is already serving requests.
func discoveryStartHandler(w http.ResponseWriter, r *http.Request) {
	cecMutex.Lock()
	runner := mqttRunner
	cecMutex.Unlock()
	if runner == nil {
		respondError(w, http.StatusServiceUnavailable, "CEC adapter not available")
		return
	}
	if err := runner.Start(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, Response{Status: "success", Message: "discovery started"})
}

// discoveryResultHandler returns the most recently completed inventory, if
// any run has finished since startup.
func discoveryResultHandler(w http.ResponseWriter, r *http.Request) {
	cecMutex.Lock()
	runner := mqttRunner
	cecMutex.Unlock()
	if runner == nil {
		respondError(w, http.StatusServiceUnavailable, "CEC adapter not available")
		return
	}
	devices, ok := runner.LastResult()
	if !ok {
		respondError(w, http.StatusNotFound, "no completed discovery run yet")
		return
	}
	views := make([]DeviceView, len(devices))
	for i, d := range devices {
		views[i] = viewOf(d)
	}
	respondSuccess(w, "last discovery result", views)
}

// RegisterRoutes wires the manual CEC control surface, the discovery API
// and the MQTT settings endpoints onto r. hub serves the discovery
// websocket stream. Call once at startup; CEC-dependent handlers consult
// package state set by PublishCEC and answer 503 until it's ready.
func RegisterRoutes(r *mux.Router, hub *Hub) {
	r.HandleFunc("/api/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/logs", getLogsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/events", eventsSSEHandler).Methods(http.MethodGet)

	r.HandleFunc("/api/devices", getDevicesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/devices/{address}", getDeviceHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/devices/{address}/power/on", powerOnHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{address}/power/off", powerOffHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{address}/power", getPowerStatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/devices/{address}/volume/up", volumeUpHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{address}/volume/down", volumeDownHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{address}/mute", muteHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/volume/up", volumeUpHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/volume/down", volumeDownHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/volume/mute", muteHandler).Methods(http.MethodPost)

	r.HandleFunc("/api/source", getActiveSourceHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/source/{address}", setActiveSourceHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/hdmi/{port}", setHDMIPortHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/key", sendKeyHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/raw", rawCommandHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/topology", getTopologyHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/audio", getAudioStatusHandler).Methods(http.MethodGet)

	r.HandleFunc("/api/mqtt/settings", getMQTTSettingsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/mqtt/settings", postMQTTSettingsHandler).Methods(http.MethodPost)

	r.HandleFunc("/api/discovery/start", discoveryStartHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/discovery/result", discoveryResultHandler).Methods(http.MethodGet)
	r.Handle("/api/discovery/stream", hub).Methods(http.MethodGet)
}
