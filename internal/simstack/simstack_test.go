package simstack

import (
	"sync"
	"testing"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

type recordingHandler struct {
	mu      sync.Mutex
	items   []wire.NativeValue
	paths   []wire.Path
	failMsg string
	done    chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{})}
}

func (h *recordingHandler) OnReportData(nodeID uint64, path wire.Path, value wire.NativeValue) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, value)
	h.paths = append(h.paths, path)
}

func (h *recordingHandler) OnReadDone(nodeID uint64, paths []wire.Path) {
	close(h.done)
}

func (h *recordingHandler) OnReportError(nodeID uint64, message string) {
	h.mu.Lock()
	h.failMsg = message
	h.mu.Unlock()
	close(h.done)
}

func (h *recordingHandler) wait(t *testing.T) {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read-done callback")
	}
}

func TestSubmitDeliversSnapshotValues(t *testing.T) {
	stack := New(Options{})
	handler := newRecordingHandler()
	stack.SetReportHandler(handler)

	path := wire.Path{EndpointID: 1, ClusterID: 0x0006, AttributeID: 0x0000}
	stack.AddNode(0x20)
	if err := stack.SetAttribute(0x20, path, wire.WireTypeBoolean, true); err != nil {
		t.Fatalf("set attribute failed: %v", err)
	}

	err := stack.Submit(0x20, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{path},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	handler.wait(t)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.items) != 1 {
		t.Fatalf("expected 1 report item, got %d", len(handler.items))
	}
	v := wire.Decode(handler.items[0])
	if v.Type != wire.TypeBoolean || !v.Bool {
		t.Errorf("expected boolean true, got %+v", v)
	}
	if handler.paths[0] != path {
		t.Errorf("expected path %s, got %s", path, handler.paths[0])
	}
}

func TestSubmitReportsNullForAbsentAttribute(t *testing.T) {
	stack := New(Options{})
	handler := newRecordingHandler()
	stack.SetReportHandler(handler)
	stack.AddNode(0x21)

	path := wire.Path{EndpointID: 1, ClusterID: 0x0006, AttributeID: 0x4001}
	err := stack.Submit(0x21, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{path},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	handler.wait(t)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.items) != 1 {
		t.Fatalf("expected 1 report item, got %d", len(handler.items))
	}
	if got := wire.Decode(handler.items[0]); got.Type != wire.TypeNull {
		t.Errorf("expected null for absent attribute, got %+v", got)
	}
}

func TestSubmitRejectsUnknownNode(t *testing.T) {
	stack := New(Options{})
	stack.SetReportHandler(newRecordingHandler())

	err := stack.Submit(0x99, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{{EndpointID: 1}},
	})
	if err == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestDropDoneSuppressesTerminalCallback(t *testing.T) {
	stack := New(Options{DropDone: true})
	handler := newRecordingHandler()
	stack.SetReportHandler(handler)
	stack.AddNode(0x22)

	err := stack.Submit(0x22, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{{EndpointID: 1}},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case <-handler.done:
		t.Fatal("read-done callback fired despite DropDone")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPairingRegistersNode(t *testing.T) {
	stack := New(Options{})
	stack.SetReportHandler(newRecordingHandler())

	if err := stack.PairOnNetwork(0x30, 20202021); err != nil {
		t.Fatalf("pair failed: %v", err)
	}
	err := stack.Submit(0x30, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{{EndpointID: 0}},
	})
	if err != nil {
		t.Fatalf("expected paired node to accept commands: %v", err)
	}

	if err := stack.PairOnNetwork(0x31, 0); err == nil {
		t.Error("expected rejection of zero pincode")
	}
}

func TestSubmitDeliversFailureReport(t *testing.T) {
	stack := New(Options{ReportFailure: "device unreachable"})
	handler := newRecordingHandler()
	stack.SetReportHandler(handler)
	stack.AddNode(0x23)

	err := stack.Submit(0x23, &controller.Command{
		Kind:  controller.CommandReadAttributes,
		Paths: []wire.Path{{EndpointID: 1}},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	handler.wait(t)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.failMsg != "device unreachable" {
		t.Errorf("expected failure message, got %q", handler.failMsg)
	}
	if len(handler.items) != 0 {
		t.Errorf("expected no items on failure, got %d", len(handler.items))
	}
}

func TestGroupManagement(t *testing.T) {
	stack := New(Options{})

	if err := stack.AddGroup("kitchen", 1); err != nil {
		t.Fatalf("add group failed: %v", err)
	}
	if err := stack.AddGroup("bedroom", 2); err != nil {
		t.Fatalf("add group failed: %v", err)
	}

	groups, err := stack.ListGroups()
	if err != nil {
		t.Fatalf("list groups failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "kitchen" || groups[1].ID != 2 {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	// A duplicate id renames instead of appending.
	if err := stack.AddGroup("pantry", 1); err != nil {
		t.Fatalf("add group failed: %v", err)
	}
	groups, _ = stack.ListGroups()
	if len(groups) != 2 || groups[0].Name != "pantry" {
		t.Fatalf("expected rename on duplicate id, got %+v", groups)
	}

	if err := stack.RemoveGroup(1); err != nil {
		t.Fatalf("remove group failed: %v", err)
	}
	if err := stack.RemoveGroup(1); err == nil {
		t.Error("expected rejection of unknown group")
	}
	groups, _ = stack.ListGroups()
	if len(groups) != 1 || groups[0].ID != 2 {
		t.Fatalf("unexpected groups after remove: %+v", groups)
	}
}

func TestUDCClientQueue(t *testing.T) {
	stack := New(Options{})

	stack.AddUDCClient("192.168.1.50:5540")
	stack.AddUDCClient("192.168.1.51:5540")

	clients, err := stack.ListUDCClients()
	if err != nil {
		t.Fatalf("list UDC clients failed: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 pending clients, got %d", len(clients))
	}

	if err := stack.CommissionUDCClient(0, 20202021); err != nil {
		t.Fatalf("commission failed: %v", err)
	}
	clients, _ = stack.ListUDCClients()
	if len(clients) != 1 || clients[0] != "192.168.1.51:5540" {
		t.Fatalf("unexpected queue after commission: %+v", clients)
	}

	if err := stack.CommissionUDCClient(5, 20202021); err == nil {
		t.Error("expected rejection of out-of-range index")
	}
	if err := stack.CommissionUDCClient(0, 0); err == nil {
		t.Error("expected rejection of zero pincode")
	}

	if err := stack.ResetUDCClients(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	clients, _ = stack.ListUDCClients()
	if len(clients) != 0 {
		t.Errorf("expected empty queue after reset, got %d", len(clients))
	}
}

func TestBLEScanBounds(t *testing.T) {
	stack := New(Options{})
	if err := stack.StartBLEScan(5 * time.Second); err != nil {
		t.Errorf("expected 5s scan to be accepted: %v", err)
	}
	if err := stack.StartBLEScan(0); err == nil {
		t.Error("expected zero timeout rejection")
	}
	if err := stack.StartBLEScan(2 * time.Minute); err == nil {
		t.Error("expected over-limit timeout rejection")
	}
}
