// Package simstack provides an in-process simulated device stack. It
// implements the controller.Subsystem interface with a fixed attribute
// table and delivers report callbacks from its own goroutine, the same
// way a real stack delivers them from its event loop. The bridge binary
// uses it when no hardware stack is configured; handler tests use it to
// exercise real callback concurrency.
package simstack

import (
	"fmt"
	"sync"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// Options configures the simulated stack.
type Options struct {
	// CallbackDelay is the simulated device round-trip before callbacks
	// fire. Zero means immediate delivery.
	CallbackDelay time.Duration

	// DropDone suppresses the terminal callback, simulating a device
	// that never answers. Used to exercise timeouts.
	DropDone bool

	// ReportFailure, when non-empty, makes every Submit answer with a
	// failure report carrying this message instead of data.
	ReportFailure string
}

// Stack is a simulated device stack.
type Stack struct {
	mu         sync.Mutex
	opts       Options
	handler    controller.ReportHandler
	nodes      map[uint64]map[wire.Path]wire.NativeValue
	groups     []controller.GroupInfo
	udcClients []string
	nextSub    uint32
}

// New creates a simulated stack with no nodes.
func New(opts Options) *Stack {
	return &Stack{
		opts:    opts,
		nodes:   make(map[uint64]map[wire.Path]wire.NativeValue),
		nextSub: 1,
	}
}

// SetReportHandler wires the callback receiver. Must be called before any
// Submit.
func (s *Stack) SetReportHandler(h controller.ReportHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// AddNode registers a simulated node with no attributes.
func (s *Stack) AddNode(nodeID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		s.nodes[nodeID] = make(map[wire.Path]wire.NativeValue)
	}
}

// SetAttribute sets a simulated attribute value, encoding v as the native
// CBOR payload for the given wire type.
func (s *Stack) SetAttribute(nodeID uint64, path wire.Path, wt wire.WireType, v any) error {
	data, err := wire.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode attribute: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	attrs, ok := s.nodes[nodeID]
	if !ok {
		attrs = make(map[wire.Path]wire.NativeValue)
		s.nodes[nodeID] = attrs
	}
	attrs[path] = wire.NativeValue{WireType: wt, Data: data}
	return nil
}

// Submit accepts a command for a known node and schedules its callbacks.
// Called under the stack lock; it must not block.
func (s *Stack) Submit(nodeID uint64, cmd *controller.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("unknown node 0x%X", nodeID)
	}
	if s.handler == nil {
		return fmt.Errorf("no report handler wired")
	}
	if len(cmd.Paths) == 0 {
		return fmt.Errorf("command has no paths")
	}

	// Snapshot the values now; delivery happens on the stack goroutine.
	type report struct {
		path  wire.Path
		value wire.NativeValue
		found bool
	}
	reports := make([]report, 0, len(cmd.Paths))
	if cmd.Kind == controller.CommandReadAttributes || cmd.Kind == controller.CommandReadEvents {
		for _, p := range cmd.Paths {
			nv, found := attrs[p]
			reports = append(reports, report{path: p, value: nv, found: found})
		}
	}

	handler := s.handler
	delay := s.opts.CallbackDelay
	dropDone := s.opts.DropDone
	failMsg := s.opts.ReportFailure
	paths := cmd.Paths

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if failMsg != "" {
			handler.OnReportError(nodeID, failMsg)
			return
		}
		for _, r := range reports {
			if !r.found {
				// Absent attribute: report an explicit null.
				handler.OnReportData(nodeID, r.path, wire.NativeValue{WireType: wire.WireTypeNull})
				continue
			}
			handler.OnReportData(nodeID, r.path, r.value)
		}
		if !dropDone {
			handler.OnReadDone(nodeID, paths)
		}
	}()

	return nil
}

// PairOnNetwork registers the node as commissioned.
func (s *Stack) PairOnNetwork(nodeID uint64, pincode uint32) error {
	if pincode == 0 {
		return fmt.Errorf("invalid pincode")
	}
	s.AddNode(nodeID)
	return nil
}

// PairCode registers the node as commissioned from a setup payload.
func (s *Stack) PairCode(nodeID uint64, payload string) error {
	if payload == "" {
		return fmt.Errorf("empty setup payload")
	}
	s.AddNode(nodeID)
	return nil
}

// PairBLEWiFi registers the node as commissioned over BLE/Wi-Fi.
func (s *Stack) PairBLEWiFi(nodeID uint64, pincode uint32, discriminator uint16, ssid, password string) error {
	if ssid == "" {
		return fmt.Errorf("empty ssid")
	}
	s.AddNode(nodeID)
	return nil
}

// PairBLEThread registers the node as commissioned over BLE/Thread.
func (s *Stack) PairBLEThread(nodeID uint64, pincode uint32, discriminator uint16, dataset []byte) error {
	if len(dataset) == 0 {
		return fmt.Errorf("empty thread dataset")
	}
	s.AddNode(nodeID)
	return nil
}

// OpenCommissioningWindow accepts the window command for a known node.
func (s *Stack) OpenCommissioningWindow(nodeID uint64, opts controller.WindowOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return fmt.Errorf("unknown node 0x%X", nodeID)
	}
	return nil
}

// Subscribe accepts a subscription for a known node.
func (s *Stack) Subscribe(nodeID uint64, opts controller.SubscribeOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return fmt.Errorf("unknown node 0x%X", nodeID)
	}
	s.nextSub++
	return nil
}

// ShutdownSubscription accepts the shutdown for a known node.
func (s *Stack) ShutdownSubscription(nodeID uint64, subscriptionID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return fmt.Errorf("unknown node 0x%X", nodeID)
	}
	return nil
}

// ShutdownSubscriptions accepts the shutdown for a known node.
func (s *Stack) ShutdownSubscriptions(nodeID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return fmt.Errorf("unknown node 0x%X", nodeID)
	}
	return nil
}

// ShutdownAllSubscriptions always succeeds.
func (s *Stack) ShutdownAllSubscriptions() error {
	return nil
}

// StartBLEScan accepts scans up to 60 seconds, matching the firmware
// bound.
func (s *Stack) StartBLEScan(timeout time.Duration) error {
	if timeout <= 0 || timeout > 60*time.Second {
		return fmt.Errorf("scan timeout out of range")
	}
	return nil
}

// AddGroup configures a group, replacing the name on a duplicate id.
func (s *Stack) AddGroup(name string, groupID uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.groups {
		if g.ID == groupID {
			s.groups[i].Name = name
			return nil
		}
	}
	s.groups = append(s.groups, controller.GroupInfo{ID: groupID, Name: name})
	return nil
}

// RemoveGroup removes a configured group.
func (s *Stack) RemoveGroup(groupID uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.groups {
		if g.ID == groupID {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unknown group %d", groupID)
}

// ListGroups returns the configured groups in configuration order.
func (s *Stack) ListGroups() ([]controller.GroupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]controller.GroupInfo, len(s.groups))
	copy(groups, s.groups)
	return groups, nil
}

// AddUDCClient queues a simulated user-directed commissioning request.
func (s *Stack) AddUDCClient(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.udcClients = append(s.udcClients, desc)
}

// ResetUDCClients clears the pending commissioning requests.
func (s *Stack) ResetUDCClients() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.udcClients = nil
	return nil
}

// ListUDCClients returns the pending commissioning requests.
func (s *Stack) ListUDCClients() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clients := make([]string, len(s.udcClients))
	copy(clients, s.udcClients)
	return clients, nil
}

// CommissionUDCClient commissions the pending request at index and
// removes it from the queue.
func (s *Stack) CommissionUDCClient(index int, pincode uint32) error {
	if pincode == 0 {
		return fmt.Errorf("invalid pincode")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.udcClients) {
		return fmt.Errorf("no pending UDC client at index %d", index)
	}
	s.udcClients = append(s.udcClients[:index], s.udcClients[index+1:]...)
	return nil
}

var _ controller.Subsystem = (*Stack)(nil)
