// Package api provides the HTTP handlers of the Matter bridge REST
// surface. Request fields mirror the firmware controller's API: numeric
// ids arrive as strings and accept a 0x prefix for hex, and plural id
// fields carry comma-separated lists.
package api

import (
	"encoding/json"
	"net/http"
)

// PairingRequest is the request body for POST /api/pairing. Fields beyond
// node_id and method are required per pairing method.
type PairingRequest struct {
	Method        string `json:"method"`
	NodeID        string `json:"node_id"`
	Pincode       string `json:"pincode,omitempty"`
	Payload       string `json:"payload,omitempty"`
	Discriminator string `json:"discriminator,omitempty"`
	SSID          string `json:"ssid,omitempty"`
	Password      string `json:"password,omitempty"`
	Dataset       string `json:"dataset,omitempty"`
	Name          string `json:"name,omitempty"`
}

// WindowRequest is the request body for POST /api/open-commissioning-window.
// Option 1 selects the enhanced flow, 0 the basic one.
type WindowRequest struct {
	NodeID        string `json:"node_id"`
	Option        string `json:"option"`
	WindowTimeout string `json:"window_timeout"`
	Iteration     string `json:"iteration"`
	Discriminator string `json:"discriminator"`
}

// InvokeRequest is the request body for POST /api/invoke-command.
type InvokeRequest struct {
	NodeID               string `json:"node_id"`
	EndpointID           string `json:"endpoint_id"`
	ClusterID            string `json:"cluster_id"`
	CommandID            string `json:"command_id"`
	CommandData          string `json:"command_data,omitempty"`
	TimedInvokeTimeoutMS int    `json:"timed_invoke_timeout_ms,omitempty"`
}

// ReadRequest is the request body for POST /api/read-attribute and
// /api/read-event. EventIDs replaces AttributeIDs for event reads.
type ReadRequest struct {
	NodeID       string `json:"node_id"`
	EndpointIDs  string `json:"endpoint_ids"`
	ClusterIDs   string `json:"cluster_ids"`
	AttributeIDs string `json:"attribute_ids,omitempty"`
	EventIDs     string `json:"event_ids,omitempty"`
	TimeoutMS    int    `json:"timeout_ms,omitempty"`
}

// WriteRequest is the request body for POST /api/write-attribute.
type WriteRequest struct {
	NodeID              string `json:"node_id"`
	EndpointIDs         string `json:"endpoint_ids"`
	ClusterIDs          string `json:"cluster_ids"`
	AttributeIDs        string `json:"attribute_ids"`
	AttributeValue      string `json:"attribute_value"`
	TimedWriteTimeoutMS int    `json:"timed_write_timeout_ms,omitempty"`
}

// SubscribeRequest is the request body for POST /api/subscribe-attribute
// and /api/subscribe-event.
type SubscribeRequest struct {
	NodeID       string `json:"node_id"`
	EndpointIDs  string `json:"endpoint_ids"`
	ClusterIDs   string `json:"cluster_ids"`
	AttributeIDs string `json:"attribute_ids,omitempty"`
	EventIDs     string `json:"event_ids,omitempty"`
	MinInterval  string `json:"min_interval"`
	MaxInterval  string `json:"max_interval"`
}

// ShutdownRequest is the request body for POST /api/shutdown-subscription
// and /api/shutdown-all-subscriptions. NodeID is optional for the latter.
type ShutdownRequest struct {
	NodeID         string `json:"node_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

// GroupSettingsRequest is the request body for POST /api/group-settings.
// GroupID and GroupName are required per action.
type GroupSettingsRequest struct {
	Action    string `json:"action"`
	GroupID   string `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// UDCRequest is the request body for POST /api/udc. Pincode and Index are
// required for the commission action.
type UDCRequest struct {
	Action  string `json:"action"`
	Pincode string `json:"pincode,omitempty"`
	Index   string `json:"index,omitempty"`
}

// BLEScanRequest is the request body for POST /api/ble-scan.
type BLEScanRequest struct {
	Timeout int  `json:"timeout"`
	Details bool `json:"details,omitempty"`
}

// StatusResponse is the generic command acknowledgement.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReportItem is one correlated attribute or event value in a read
// response.
type ReportItem struct {
	EndpointID  uint16 `json:"endpoint_id"`
	ClusterID   uint32 `json:"cluster_id"`
	AttributeID uint32 `json:"attribute_id"`
	Type        string `json:"type"`
	Value       any    `json:"value"`
}

// ReadResponse is the response for read operations.
type ReadResponse struct {
	Status  string       `json:"status"`
	NodeID  string       `json:"node_id"`
	Items   []ReportItem `json:"items"`
	Message string       `json:"message,omitempty"`
}

// NodeListResponse is the response for GET /api/nodes.
type NodeListResponse struct {
	Nodes []NodeInfo `json:"nodes"`
	Total int        `json:"total"`
}

// NodeInfo is one commissioned node in API responses.
type NodeInfo struct {
	ID       string `json:"id"`
	NodeID   string `json:"node_id"`
	Name     string `json:"name,omitempty"`
	Method   string `json:"method"`
	PairedAt string `json:"paired_at"`
}

// DeviceListResponse is the response for GET /api/devices.
type DeviceListResponse struct {
	Devices []any  `json:"devices"`
	Timeout string `json:"timeout"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Status constants used in response bodies.
const (
	StatusSuccess = "success"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// writeJSONResponse writes a JSON response with the given status code.
func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, ErrorResponse{
		Status:  StatusError,
		Message: message,
	})
}
