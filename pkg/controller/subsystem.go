package controller

import (
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// CommandKind selects the interaction a Command performs.
type CommandKind uint8

const (
	// CommandReadAttributes reads attribute values at the command paths.
	CommandReadAttributes CommandKind = iota + 1

	// CommandReadEvents reads events at the command paths.
	CommandReadEvents

	// CommandWriteAttributes writes Value to the command paths.
	CommandWriteAttributes

	// CommandInvoke invokes a cluster command with Payload.
	CommandInvoke
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case CommandReadAttributes:
		return "READ_ATTRIBUTES"
	case CommandReadEvents:
		return "READ_EVENTS"
	case CommandWriteAttributes:
		return "WRITE_ATTRIBUTES"
	case CommandInvoke:
		return "INVOKE"
	default:
		return "UNKNOWN"
	}
}

// Command is a pre-validated device-stack command. Field meaning depends
// on Kind: Value carries the encoded attribute value for writes, Payload
// the parameter blob for invokes. TimedTimeout, when positive, requests a
// timed write or invoke.
type Command struct {
	Kind         CommandKind
	Paths        []wire.Path
	Value        string
	Payload      string
	TimedTimeout time.Duration
}

// WindowOptions configures an open-commissioning-window call. For the
// enhanced option the controller derives Salt and Verifier before the
// stack call; for the basic option both stay empty.
type WindowOptions struct {
	Enhanced      bool
	WindowTimeout time.Duration
	Iterations    uint32
	Discriminator uint16
	Salt          []byte
	Verifier      []byte
}

// SubscribeOptions configures a subscription command.
type SubscribeOptions struct {
	Paths       []wire.Path
	Events      bool
	MinInterval uint16
	MaxInterval uint16
}

// GroupInfo describes one multicast group configured on the controller.
type GroupInfo struct {
	ID   uint16 `json:"group_id"`
	Name string `json:"group_name"`
}

// Subsystem is the external device-command stack. All methods are invoked
// under the stack lock and must be fast: they hand the command to the
// stack and return accepted (nil) or rejected (error) without waiting for
// device round-trips. Results for Submit arrive later through the
// ReportHandler the stack was wired with.
type Subsystem interface {
	// Submit hands a command to the stack for the given node.
	Submit(nodeID uint64, cmd *Command) error

	// PairOnNetwork commissions an already-on-network device.
	PairOnNetwork(nodeID uint64, pincode uint32) error

	// PairCode commissions a device from its setup payload.
	PairCode(nodeID uint64, payload string) error

	// PairBLEWiFi commissions over BLE, steering the device onto Wi-Fi.
	PairBLEWiFi(nodeID uint64, pincode uint32, discriminator uint16, ssid, password string) error

	// PairBLEThread commissions over BLE with a Thread dataset.
	PairBLEThread(nodeID uint64, pincode uint32, discriminator uint16, dataset []byte) error

	// OpenCommissioningWindow opens a commissioning window on a node.
	OpenCommissioningWindow(nodeID uint64, opts WindowOptions) error

	// Subscribe starts an attribute or event subscription.
	Subscribe(nodeID uint64, opts SubscribeOptions) error

	// ShutdownSubscription tears down one subscription on a node.
	ShutdownSubscription(nodeID uint64, subscriptionID uint32) error

	// ShutdownSubscriptions tears down all subscriptions for a node.
	ShutdownSubscriptions(nodeID uint64) error

	// ShutdownAllSubscriptions tears down every subscription.
	ShutdownAllSubscriptions() error

	// StartBLEScan starts a bounded BLE discovery scan.
	StartBLEScan(timeout time.Duration) error

	// AddGroup configures a multicast group on the controller.
	AddGroup(name string, groupID uint16) error

	// RemoveGroup removes a configured group.
	RemoveGroup(groupID uint16) error

	// ListGroups returns the configured groups.
	ListGroups() ([]GroupInfo, error)

	// ResetUDCClients clears all pending user-directed commissioning
	// requests.
	ResetUDCClients() error

	// ListUDCClients describes the pending user-directed commissioning
	// requests in arrival order.
	ListUDCClients() ([]string, error)

	// CommissionUDCClient commissions the pending user-directed
	// commissioning request at index with the given setup pincode.
	CommissionUDCClient(index int, pincode uint32) error
}

// ReportHandler receives the stack's asynchronous callbacks. The
// Controller implements it; stacks deliver callbacks from their own
// goroutine.
type ReportHandler interface {
	// OnReportData delivers one decoded report item for a node.
	OnReportData(nodeID uint64, path wire.Path, value wire.NativeValue)

	// OnReadDone signals that no further items will arrive for a node's
	// current request.
	OnReadDone(nodeID uint64, paths []wire.Path)

	// OnReportError delivers a stack-reported failure for a node's
	// current request. Terminal like OnReadDone: no further items
	// arrive after it.
	OnReportError(nodeID uint64, message string)
}
