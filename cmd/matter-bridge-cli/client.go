package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the bridge REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the bridge at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// Reads block server-side until the device answers; leave room
		// beyond the bridge's own request timeout.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// call performs one API request and decodes the JSON response into a
// generic map, surfacing non-2xx statuses as errors with the body message.
func (c *Client) call(method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := decoded["message"].(string)
		if msg == "" {
			msg = resp.Status
		}
		return decoded, fmt.Errorf("%s (HTTP %d)", msg, resp.StatusCode)
	}
	return decoded, nil
}

// ReadAttribute reads attributes and returns the decoded response.
func (c *Client) ReadAttribute(nodeID, endpointIDs, clusterIDs, attributeIDs string) (map[string]any, error) {
	return c.call(http.MethodPost, "/api/read-attribute", map[string]string{
		"node_id":       nodeID,
		"endpoint_ids":  endpointIDs,
		"cluster_ids":   clusterIDs,
		"attribute_ids": attributeIDs,
	})
}

// WriteAttribute writes an attribute value.
func (c *Client) WriteAttribute(nodeID, endpointIDs, clusterIDs, attributeIDs, value string) (map[string]any, error) {
	return c.call(http.MethodPost, "/api/write-attribute", map[string]string{
		"node_id":         nodeID,
		"endpoint_ids":    endpointIDs,
		"cluster_ids":     clusterIDs,
		"attribute_ids":   attributeIDs,
		"attribute_value": value,
	})
}

// InvokeCommand invokes a cluster command.
func (c *Client) InvokeCommand(nodeID, endpointID, clusterID, commandID, data string) (map[string]any, error) {
	body := map[string]string{
		"node_id":     nodeID,
		"endpoint_id": endpointID,
		"cluster_id":  clusterID,
		"command_id":  commandID,
	}
	if data != "" {
		body["command_data"] = data
	}
	return c.call(http.MethodPost, "/api/invoke-command", body)
}

// PairOnNetwork commissions an on-network device.
func (c *Client) PairOnNetwork(nodeID, pincode, name string) (map[string]any, error) {
	return c.call(http.MethodPost, "/api/pairing", map[string]string{
		"method":  "onnetwork",
		"node_id": nodeID,
		"pincode": pincode,
		"name":    name,
	})
}

// PairCode commissions a device from its setup payload.
func (c *Client) PairCode(nodeID, payload string) (map[string]any, error) {
	return c.call(http.MethodPost, "/api/pairing", map[string]string{
		"method":  "code",
		"node_id": nodeID,
		"payload": payload,
	})
}

// Nodes lists the commissioned nodes.
func (c *Client) Nodes() (map[string]any, error) {
	return c.call(http.MethodGet, "/api/nodes", nil)
}

// ForgetNode removes a node from the registry.
func (c *Client) ForgetNode(nodeID string) (map[string]any, error) {
	return c.call(http.MethodDelete, "/api/nodes/"+nodeID, nil)
}

// Devices runs mDNS discovery on the bridge.
func (c *Client) Devices(timeout string) (map[string]any, error) {
	path := "/api/devices"
	if timeout != "" {
		path += "?timeout=" + timeout
	}
	return c.call(http.MethodGet, path, nil)
}

// BLEScan starts a BLE scan on the bridge.
func (c *Client) BLEScan(timeoutSec int) (map[string]any, error) {
	return c.call(http.MethodPost, "/api/ble-scan", map[string]any{
		"timeout": timeoutSec,
	})
}
