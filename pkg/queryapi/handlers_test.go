package queryapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocketmq-go/namesrv/internal/rim"
)

func newTestRouter(t *testing.T) (http.Handler, *rim.RIM) {
	t.Helper()
	r := rim.New(rim.Config{})
	return NewRouter(r, 2<<20), r
}

func TestLiveness_ReturnsOK(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
}

func TestRoute_UnknownTopicReturnsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/route/no-such-topic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRegisterThenRoute_RoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	body := registerRequest{
		ClusterName:  "DefaultCluster",
		BrokerAddr:   "10.0.0.1:10911",
		BrokerName:   "broker-a",
		BrokerID:     0,
		HaServerAddr: "10.0.0.1:10912",
		Wrapper: &rim.TopicConfigAndMappingSerializeWrapper{
			DataVersion: rim.DataVersion{StateVersion: 1},
			TopicConfigTable: map[string]rim.TopicConfig{
				"T":      {TopicName: "T", WriteQueueNums: 4, ReadQueueNums: 4, Perm: rim.PermRead | rim.PermWrite},
				"filler": {TopicName: "filler", WriteQueueNums: 4, ReadQueueNums: 4, Perm: rim.PermRead | rim.PermWrite},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal register request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/broker/register", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/route/T", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
}

func TestRegister_SingleTopicGuardReturnsAccepted(t *testing.T) {
	router, _ := newTestRouter(t)

	body := registerRequest{
		ClusterName:  "DefaultCluster",
		BrokerAddr:   "10.0.0.1:10911",
		BrokerName:   "broker-a",
		BrokerID:     0,
		HaServerAddr: "10.0.0.1:10912",
		Wrapper: &rim.TopicConfigAndMappingSerializeWrapper{
			DataVersion:      rim.DataVersion{StateVersion: 1},
			TopicConfigTable: map[string]rim.TopicConfig{"T": {TopicName: "T", Perm: rim.PermRead}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal register request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/broker/register", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status %d (ignored partial registration), got %d: %s",
			http.StatusAccepted, w.Code, w.Body.String())
	}
}

func TestUnregister_RemovesBroker(t *testing.T) {
	router, r := newTestRouter(t)

	if _, err := r.RegisterBroker("DefaultCluster", "10.0.0.1:10911", "broker-a", 0,
		"10.0.0.1:10912", "", false, &rim.TopicConfigAndMappingSerializeWrapper{
			TopicConfigTable: map[string]rim.TopicConfig{
				"T":      {TopicName: "T", Perm: rim.PermRead | rim.PermWrite},
				"filler": {TopicName: "filler", Perm: rim.PermRead | rim.PermWrite},
			},
		}, nil); err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}

	payload, err := json.Marshal(unregisterRequest{
		ClusterName: "DefaultCluster",
		BrokerAddr:  "10.0.0.1:10911",
		BrokerName:  "broker-a",
		BrokerID:    0,
	})
	if err != nil {
		t.Fatalf("failed to marshal unregister request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/broker/unregister", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	route, err := r.PickupTopicRouteData("T")
	if err != nil {
		t.Fatalf("pickup failed: %v", err)
	}
	if route != nil {
		t.Error("expected topic route to be gone after unregistering its only broker")
	}
}

func TestCluster_ReturnsSnapshot(t *testing.T) {
	router, r := newTestRouter(t)

	if _, err := r.RegisterBroker("DefaultCluster", "10.0.0.1:10911", "broker-a", 0,
		"10.0.0.1:10912", "", false, nil, nil); err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/cluster", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected data to be a map, got %T", resp.Data)
	}
	if _, ok := data["clusterAddrTable"].(map[string]interface{}); !ok {
		if _, ok := data["ClusterAddrTable"].(map[string]interface{}); !ok {
			t.Errorf("expected a cluster address table in the response, got %v", data)
		}
	}
}
