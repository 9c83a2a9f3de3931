package queryapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketmq-go/namesrv/internal/rim"
	"github.com/rocketmq-go/namesrv/internal/telemetry"
)

// handler binds the chi routes to an *rim.RIM. Unlike the teacher's
// CRUD handlers it holds no store or auth dependency: the RIM itself
// is the only state this API fronts.
type handler struct {
	rim *rim.RIM
}

func newHandler(r *rim.RIM) *handler {
	return &handler{rim: r}
}

// Liveness handles GET /health.
func (h *handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"service": "namesrv"}))
}

// Route handles GET /route/{topic}.
func (h *handler) Route(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	_, span := telemetry.StartRIMSpan(r.Context(), telemetry.SpanPickupTopicRoute, telemetry.Topic(topic))
	defer span.End()

	route, err := h.rim.PickupTopicRouteData(topic)
	if err != nil {
		span.RecordError(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	span.SetAttributes(telemetry.Found(route != nil))
	if route == nil {
		writeJSON(w, http.StatusNotFound, errorResponse("topic not found: "+topic))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(route))
}

// Cluster handles GET /cluster.
func (h *handler) Cluster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(h.rim.GetAllClusterInfo()))
}

// registerRequest mirrors the parameters of rim.RIM.RegisterBroker.
type registerRequest struct {
	ClusterName        string                                      `json:"clusterName"`
	BrokerAddr         string                                      `json:"brokerAddr"`
	BrokerName         string                                      `json:"brokerName"`
	BrokerID           int64                                       `json:"brokerId"`
	HaServerAddr       string                                      `json:"haServerAddr"`
	ZoneName           string                                      `json:"zoneName"`
	EnableActingMaster bool                                        `json:"enableActingMaster"`
	Wrapper            *rim.TopicConfigAndMappingSerializeWrapper `json:"wrapper"`
	FilterServerList   []string                                    `json:"filterServerList"`
}

// Register handles POST /broker/register.
func (h *handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	_, span := telemetry.StartRIMSpan(r.Context(), telemetry.SpanRegisterBroker,
		telemetry.Cluster(req.ClusterName), telemetry.Broker(req.BrokerName),
		telemetry.BrokerID(req.BrokerID), telemetry.BrokerAddr(req.BrokerAddr))
	defer span.End()

	result, err := h.rim.RegisterBroker(
		req.ClusterName,
		req.BrokerAddr,
		req.BrokerName,
		req.BrokerID,
		req.HaServerAddr,
		req.ZoneName,
		req.EnableActingMaster,
		req.Wrapper,
		req.FilterServerList,
	)
	if err != nil {
		span.RecordError(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	if result == nil {
		// Out-of-order partial registration guard (spec §4.2 step 6):
		// request was accepted for processing but deliberately ignored.
		writeJSON(w, http.StatusAccepted, okResponse(nil))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(result))
}

// unregisterRequest is the body for POST /broker/unregister.
type unregisterRequest struct {
	ClusterName string `json:"clusterName"`
	BrokerAddr  string `json:"brokerAddr"`
	BrokerName  string `json:"brokerName"`
	BrokerID    int64  `json:"brokerId"`
}

// Unregister handles POST /broker/unregister.
func (h *handler) Unregister(w http.ResponseWriter, r *http.Request) {
	var req unregisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	h.rim.UnregisterBroker(req.ClusterName, req.BrokerAddr, req.BrokerName, req.BrokerID)
	writeJSON(w, http.StatusOK, okResponse(nil))
}
