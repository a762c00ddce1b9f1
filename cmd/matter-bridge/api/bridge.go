package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/correlate"
	"github.com/mash-protocol/matter-bridge/pkg/nodestore"
)

// BridgeAPI handles the device-command endpoints. Read operations block
// on the controller until the correlated result arrives; pass-through
// operations return as soon as the stack accepts the command.
type BridgeAPI struct {
	ctrl  *controller.Controller
	store *nodestore.Store
	log   *slog.Logger
}

// NewBridgeAPI creates the bridge API over a controller and node store.
func NewBridgeAPI(ctrl *controller.Controller, store *nodestore.Store, logger *slog.Logger) *BridgeAPI {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BridgeAPI{ctrl: ctrl, store: store, log: logger}
}

// writeControllerError maps controller errors onto HTTP statuses: busy
// locks are retryable, a second request for a busy node is a conflict,
// everything else is a server error.
func writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, controller.ErrStackBusy), errors.Is(err, correlate.ErrTableBusy):
		writeJSONError(w, http.StatusServiceUnavailable, "Matter stack busy - please retry")
	case errors.Is(err, correlate.ErrRequestInFlight):
		writeJSONError(w, http.StatusConflict, "request already in flight for this node")
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// HandlePairing handles POST /api/pairing.
func (b *BridgeAPI) HandlePairing(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req PairingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Method {
	case "onnetwork":
		pin, perr := parseUint(req.Pincode, 32)
		if perr != nil {
			writeJSONError(w, http.StatusBadRequest, "Missing or invalid node_id or pincode for onnetwork pairing")
			return
		}
		err = b.ctrl.PairOnNetwork(nodeID, uint32(pin))

	case "code":
		if req.Payload == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing or invalid node_id or payload for code pairing")
			return
		}
		err = b.ctrl.PairCode(nodeID, req.Payload)

	case "ble-wifi":
		pin, perr := parseUint(req.Pincode, 32)
		disc, derr := parseUint(req.Discriminator, 16)
		if perr != nil || derr != nil || req.SSID == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing or invalid parameters for ble-wifi pairing")
			return
		}
		err = b.ctrl.PairBLEWiFi(nodeID, uint32(pin), uint16(disc), req.SSID, req.Password)

	case "ble-thread":
		pin, perr := parseUint(req.Pincode, 32)
		disc, derr := parseUint(req.Discriminator, 16)
		if perr != nil || derr != nil {
			writeJSONError(w, http.StatusBadRequest, "Missing or invalid parameters for ble-thread pairing")
			return
		}
		dataset, herr := hex.DecodeString(req.Dataset)
		if herr != nil || len(dataset) == 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid dataset format - must be hex string")
			return
		}
		err = b.ctrl.PairBLEThread(nodeID, uint32(pin), uint16(disc), dataset)

	default:
		writeJSONError(w, http.StatusBadRequest, "Unknown pairing method")
		return
	}

	if err != nil {
		writeControllerError(w, err)
		return
	}

	if _, serr := b.store.Add(nodeID, req.Name, req.Method); serr != nil {
		b.log.Error("failed to record paired node", "node_id", nodeID, "error", serr)
	}

	b.log.Info("node paired", "node_id", nodeID, "method", req.Method)
	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Pairing command sent successfully",
	})
}

// HandleOpenCommissioningWindow handles POST /api/open-commissioning-window.
func (b *BridgeAPI) HandleOpenCommissioningWindow(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req WindowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	option, oerr := parseUint(req.Option, 8)
	windowTimeout, werr := parseUint(req.WindowTimeout, 16)
	iterations, ierr := parseUint(req.Iteration, 32)
	disc, derr := parseUint(req.Discriminator, 16)
	if oerr != nil || werr != nil || ierr != nil || derr != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid required parameters")
		return
	}

	opts := controller.WindowOptions{
		Enhanced:      option == 1,
		WindowTimeout: time.Duration(windowTimeout) * time.Second,
		Iterations:    uint32(iterations),
		Discriminator: uint16(disc),
	}
	// The setup pincode for the temporary window; the firmware uses a
	// fixed one as well.
	const windowPincode = 10000

	if err := b.ctrl.OpenCommissioningWindow(nodeID, windowPincode, opts); err != nil {
		writeControllerError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Commissioning window opened successfully",
	})
}

// performAndRespond runs a correlated request and renders the outcome.
func (b *BridgeAPI) performAndRespond(w http.ResponseWriter, r *http.Request, nodeID uint64, cmd *controller.Command, expected int, timeoutMS int, okMessage string) {
	timeout := time.Duration(timeoutMS) * time.Millisecond

	res := b.ctrl.PerformRequest(r.Context(), nodeID, cmd, expected, timeout)
	switch res.Outcome {
	case controller.OutcomeSuccess:
		writeJSONResponse(w, http.StatusOK, readResponse(nodeID, res, okMessage))

	case controller.OutcomeTimeout:
		resp := readResponse(nodeID, res, "")
		resp.Status = StatusTimeout
		resp.Message = res.Message
		writeJSONResponse(w, http.StatusGatewayTimeout, resp)

	default:
		writeControllerError(w, res.Err)
	}
}

func readResponse(nodeID uint64, res *controller.Result, okMessage string) ReadResponse {
	items := make([]ReportItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, ReportItem{
			EndpointID:  it.Path.EndpointID,
			ClusterID:   it.Path.ClusterID,
			AttributeID: it.Path.AttributeID,
			Type:        it.Value.Type.String(),
			Value:       it.Value.Interface(),
		})
	}
	msg := okMessage
	if res.Message != "" {
		msg = res.Message
	}
	return ReadResponse{
		Status:  StatusSuccess,
		NodeID:  "0x" + strconv.FormatUint(nodeID, 16),
		Items:   items,
		Message: msg,
	}
}

// HandleReadAttribute handles POST /api/read-attribute.
func (b *BridgeAPI) HandleReadAttribute(w http.ResponseWriter, r *http.Request) {
	b.handleRead(w, r, controller.CommandReadAttributes)
}

// HandleReadEvent handles POST /api/read-event.
func (b *BridgeAPI) HandleReadEvent(w http.ResponseWriter, r *http.Request) {
	b.handleRead(w, r, controller.CommandReadEvents)
}

func (b *BridgeAPI) handleRead(w http.ResponseWriter, r *http.Request, kind controller.CommandKind) {
	if !requirePost(w, r) {
		return
	}
	var req ReadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids := req.AttributeIDs
	if kind == controller.CommandReadEvents {
		ids = req.EventIDs
	}
	paths, err := parsePathLists(req.EndpointIDs, req.ClusterIDs, ids)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmd := &controller.Command{Kind: kind, Paths: paths}
	b.performAndRespond(w, r, nodeID, cmd, len(paths), req.TimeoutMS, "Read command completed")
}

// HandleWriteAttribute handles POST /api/write-attribute.
func (b *BridgeAPI) HandleWriteAttribute(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req WriteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AttributeValue == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid required parameters")
		return
	}
	paths, err := parsePathLists(req.EndpointIDs, req.ClusterIDs, req.AttributeIDs)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmd := &controller.Command{
		Kind:         controller.CommandWriteAttributes,
		Paths:        paths,
		Value:        req.AttributeValue,
		TimedTimeout: time.Duration(req.TimedWriteTimeoutMS) * time.Millisecond,
	}
	// Writes report no items; the terminal callback confirms delivery.
	b.performAndRespond(w, r, nodeID, cmd, 0, 0, "Write attribute command completed")
}

// HandleInvokeCommand handles POST /api/invoke-command.
func (b *BridgeAPI) HandleInvokeCommand(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req InvokeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ep, eerr := parseUint(req.EndpointID, 16)
	cl, cerr := parseUint(req.ClusterID, 32)
	cid, derr := parseUint(req.CommandID, 32)
	if eerr != nil || cerr != nil || derr != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid required parameters")
		return
	}

	paths, err := zipPaths([]uint16{uint16(ep)}, []uint32{uint32(cl)}, []uint32{uint32(cid)})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd := &controller.Command{
		Kind:         controller.CommandInvoke,
		Paths:        paths,
		Payload:      req.CommandData,
		TimedTimeout: time.Duration(req.TimedInvokeTimeoutMS) * time.Millisecond,
	}
	b.performAndRespond(w, r, nodeID, cmd, 0, 0, "Command invoked successfully")
}

// HandleSubscribeAttribute handles POST /api/subscribe-attribute.
func (b *BridgeAPI) HandleSubscribeAttribute(w http.ResponseWriter, r *http.Request) {
	b.handleSubscribe(w, r, false)
}

// HandleSubscribeEvent handles POST /api/subscribe-event.
func (b *BridgeAPI) HandleSubscribeEvent(w http.ResponseWriter, r *http.Request) {
	b.handleSubscribe(w, r, true)
}

func (b *BridgeAPI) handleSubscribe(w http.ResponseWriter, r *http.Request, events bool) {
	if !requirePost(w, r) {
		return
	}
	var req SubscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	minI, minErr := parseUint(req.MinInterval, 16)
	maxI, maxErr := parseUint(req.MaxInterval, 16)
	if minErr != nil || maxErr != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid required parameters")
		return
	}
	ids := req.AttributeIDs
	if events {
		ids = req.EventIDs
	}
	paths, err := parsePathLists(req.EndpointIDs, req.ClusterIDs, ids)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := controller.SubscribeOptions{
		Paths:       paths,
		Events:      events,
		MinInterval: uint16(minI),
		MaxInterval: uint16(maxI),
	}
	if err := b.ctrl.Subscribe(nodeID, opts); err != nil {
		writeControllerError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Subscribe command sent successfully",
	})
}

// HandleShutdownSubscription handles POST /api/shutdown-subscription.
func (b *BridgeAPI) HandleShutdownSubscription(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req ShutdownRequest
	if !decodeBody(w, r, &req) {
		return
	}

	nodeID, err := parseNodeID(req.NodeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	subID, serr := parseUint(req.SubscriptionID, 32)
	if serr != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid node_id or subscription_id")
		return
	}

	if err := b.ctrl.ShutdownSubscription(nodeID, uint32(subID)); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Subscription shutdown successfully",
	})
}

// HandleShutdownAllSubscriptions handles POST /api/shutdown-all-subscriptions.
// With a node_id in the body only that node's subscriptions are torn down.
func (b *BridgeAPI) HandleShutdownAllSubscriptions(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req ShutdownRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var err error
	if req.NodeID != "" {
		var nodeID uint64
		nodeID, err = parseNodeID(req.NodeID)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid node_id parameter")
			return
		}
		err = b.ctrl.ShutdownSubscriptions(nodeID)
	} else {
		err = b.ctrl.ShutdownAllSubscriptions()
	}
	if err != nil {
		writeControllerError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "All subscriptions shutdown successfully",
	})
}

// HandleBLEScan handles POST /api/ble-scan.
func (b *BridgeAPI) HandleBLEScan(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req BLEScanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Timeout < 1 || req.Timeout > 60 {
		writeJSONError(w, http.StatusBadRequest, "Timeout must be between 1 and 60 seconds")
		return
	}

	if err := b.ctrl.StartBLEScan(time.Duration(req.Timeout) * time.Second); err != nil {
		writeControllerError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  StatusSuccess,
		"message": "BLE scan started successfully",
		"timeout": req.Timeout,
	})
}
