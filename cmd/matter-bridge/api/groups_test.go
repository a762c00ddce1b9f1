package api

import (
	"net/http"
	"testing"

	"github.com/mash-protocol/matter-bridge/internal/simstack"
)

func TestGroupSettingsLifecycle(t *testing.T) {
	env := newTestEnv(t, simstack.Options{})

	w := postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action:    "add-group",
		GroupID:   "0x01",
		GroupName: "kitchen",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action: "show-groups",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
		Groups []struct {
			ID   uint16 `json:"group_id"`
			Name string `json:"group_name"`
		} `json:"groups"`
	}
	decodeResponse(t, w, &resp)
	if resp.Status != StatusSuccess {
		t.Errorf("expected success status, got %q", resp.Status)
	}
	if len(resp.Groups) != 1 || resp.Groups[0].ID != 1 || resp.Groups[0].Name != "kitchen" {
		t.Fatalf("unexpected groups: %+v", resp.Groups)
	}

	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action:  "remove-group",
		GroupID: "1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Removing again hits an unknown group on the stack.
	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action:  "remove-group",
		GroupID: "1",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown group, got %d", w.Code)
	}
}

func TestGroupSettingsValidation(t *testing.T) {
	env := newTestEnv(t, simstack.Options{})

	w := postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing action, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action:  "add-group",
		GroupID: "1",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing group_name, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action: "remove-group",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing group_id, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleGroupSettings, "/api/group-settings", GroupSettingsRequest{
		Action: "merge-groups",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported action, got %d", w.Code)
	}
}

func TestUDCCommands(t *testing.T) {
	env := newTestEnv(t, simstack.Options{})
	env.stack.AddUDCClient("192.168.1.50:5540")

	w := postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{Action: "print"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status  string   `json:"status"`
		Clients []string `json:"clients"`
	}
	decodeResponse(t, w, &resp)
	if len(resp.Clients) != 1 || resp.Clients[0] != "192.168.1.50:5540" {
		t.Fatalf("unexpected clients: %+v", resp.Clients)
	}

	w = postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{
		Action:  "commission",
		Pincode: "20202021",
		Index:   "0",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The queue is empty now; the same index no longer exists.
	w = postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{
		Action:  "commission",
		Pincode: "20202021",
		Index:   "0",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for empty queue, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{Action: "reset"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUDCValidation(t *testing.T) {
	env := newTestEnv(t, simstack.Options{})

	w := postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing action, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{
		Action:  "commission",
		Pincode: "20202021",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing index, got %d", w.Code)
	}

	w = postJSON(t, env.bridge.HandleUDC, "/api/udc", UDCRequest{Action: "announce"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported action, got %d", w.Code)
	}
}
