package bridge

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoveryStartHandlerUnavailableWithoutRunner(t *testing.T) {
	cecMutex.Lock()
	mqttRunner = nil
	cecMutex.Unlock()

	rec := httptest.NewRecorder()
	discoveryStartHandler(rec, httptest.NewRequest(http.MethodPost, "/api/discovery/start", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestDiscoveryResultHandlerUnavailableWithoutRunner(t *testing.T) {
	cecMutex.Lock()
	mqttRunner = nil
	cecMutex.Unlock()

	rec := httptest.NewRecorder()
	discoveryResultHandler(rec, httptest.NewRequest(http.MethodGet, "/api/discovery/result", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
