package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/correlate"
	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// Controller errors.
var (
	// ErrStackBusy means the stack lock was not acquired within its
	// bound. Retryable; callers should surface a retry-suggesting status.
	ErrStackBusy = errors.New("device stack busy")

	// ErrSubmitRejected wraps a stack rejection of a command.
	ErrSubmitRejected = errors.New("command rejected by device stack")

	// ErrDeviceFailure means the stack completed the request with a
	// failure report instead of data.
	ErrDeviceFailure = errors.New("device reported failure")
)

// DefaultRequestTimeout bounds the wait for a request's terminal callback.
const DefaultRequestTimeout = 10 * time.Second

// Outcome classifies the result of a correlated request.
type Outcome uint8

const (
	// OutcomeSuccess means the terminal callback fired before the
	// timeout and Items holds the ordered result list.
	OutcomeSuccess Outcome = iota + 1

	// OutcomeTimeout means no terminal callback arrived in time. The
	// operation's fate is unknown: the stack may still be processing.
	OutcomeTimeout

	// OutcomeError means submission failed; no wait was performed.
	OutcomeError
)

// String returns the outcome name used in API responses.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Result is the assembled outcome of one correlated request. Items is
// populated on success, and on timeout only when the controller is
// configured to keep partial results.
type Result struct {
	Outcome Outcome
	Items   []correlate.Item
	Message string
	Err     error
}

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	// StackLockTimeout bounds stack lock acquisition.
	StackLockTimeout time.Duration

	// RequestTimeout bounds the wait for the terminal callback.
	RequestTimeout time.Duration

	// TableLockTimeout bounds correlation table lock acquisition.
	TableLockTimeout time.Duration

	// PartialResults keeps items accumulated before a timeout instead of
	// discarding them. The outcome is still reported as timeout.
	PartialResults bool

	// Logger receives bridge diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Controller bridges synchronous requests onto the asynchronous device
// stack. It is safe for concurrent use; requests to distinct node ids
// proceed independently.
type Controller struct {
	sub   Subsystem
	lock  *StackLock
	table *correlate.Table
	opts  Options
	log   *slog.Logger
}

// New creates a controller over the given stack.
func New(sub Subsystem, opts Options) *Controller {
	if opts.StackLockTimeout <= 0 {
		opts.StackLockTimeout = DefaultStackLockTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		sub:   sub,
		lock:  NewStackLock(),
		table: correlate.NewTable(opts.TableLockTimeout),
		opts:  opts,
		log:   logger,
	}
}

// InFlight returns the number of requests currently awaiting callbacks.
func (c *Controller) InFlight() int {
	return c.table.Len()
}

// PerformRequest submits cmd for nodeID and blocks until the terminal
// callback fires, the timeout elapses or ctx is cancelled. A non-positive
// timeout selects the configured default. The correlation entry and its
// context are torn down on every path before returning.
func (c *Controller) PerformRequest(ctx context.Context, nodeID uint64, cmd *Command, expected int, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = c.opts.RequestTimeout
	}

	rc := correlate.NewContext(nodeID, expected)
	if err := c.table.Register(nodeID, rc); err != nil {
		return &Result{
			Outcome: OutcomeError,
			Message: err.Error(),
			Err:     err,
		}
	}

	// Submit under the stack lock, release before waiting. Never block
	// on device I/O while holding it.
	if !c.lock.Acquire(c.opts.StackLockTimeout) {
		c.table.Remove(nodeID)
		return &Result{
			Outcome: OutcomeError,
			Message: "device stack busy - please retry",
			Err:     ErrStackBusy,
		}
	}
	err := c.sub.Submit(nodeID, cmd)
	c.lock.Release()

	if err != nil {
		c.table.Remove(nodeID)
		werr := fmt.Errorf("%w: %w", ErrSubmitRejected, err)
		return &Result{
			Outcome: OutcomeError,
			Message: werr.Error(),
			Err:     werr,
		}
	}

	c.log.Debug("command submitted",
		"node_id", nodeID,
		"kind", cmd.Kind.String(),
		"expected", expected)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-rc.Done():
		c.table.Remove(nodeID)
		if msg := rc.ErrMessage(); !rc.OK() && msg != "" {
			return &Result{
				Outcome: OutcomeError,
				Message: msg,
				Err:     fmt.Errorf("%w: %s", ErrDeviceFailure, msg),
			}
		}
		return &Result{
			Outcome: OutcomeSuccess,
			Items:   rc.Items(),
			Message: rc.ErrMessage(),
		}

	case <-timer.C:
		c.table.Remove(nodeID)
		c.log.Warn("request timed out",
			"node_id", nodeID,
			"received", rc.Received(),
			"expected", expected)
		res := &Result{
			Outcome: OutcomeTimeout,
			Message: fmt.Sprintf("no response within %s", timeout),
		}
		if c.opts.PartialResults {
			res.Items = rc.Items()
		}
		return res

	case <-ctx.Done():
		c.table.Remove(nodeID)
		return &Result{
			Outcome: OutcomeTimeout,
			Message: ctx.Err().Error(),
		}
	}
}

// OnReportData records one arrived item for the node's in-flight request.
// Items for unknown node ids are dropped: the request has already timed
// out or was never registered.
func (c *Controller) OnReportData(nodeID uint64, path wire.Path, value wire.NativeValue) {
	val := wire.Decode(value)
	found := c.table.WithContext(nodeID, func(rc *correlate.Context) {
		rc.AppendItem(correlate.Item{Path: path, Value: val})
	})
	if !found {
		c.log.Debug("dropping report for idle node", "node_id", nodeID, "path", path.String())
	}
}

// OnReadDone fires the completion signal for the node's in-flight request.
// Duplicate or late calls are no-ops.
func (c *Controller) OnReadDone(nodeID uint64, paths []wire.Path) {
	found := c.table.WithContext(nodeID, func(rc *correlate.Context) {
		rc.Complete()
	})
	if !found {
		c.log.Debug("dropping completion for idle node", "node_id", nodeID)
	}
}

// OnReportError records a stack-reported failure and completes the node's
// in-flight request. Failures for unknown node ids are dropped like any
// other late callback.
func (c *Controller) OnReportError(nodeID uint64, message string) {
	found := c.table.WithContext(nodeID, func(rc *correlate.Context) {
		rc.Fail(message)
		rc.Complete()
	})
	if !found {
		c.log.Debug("dropping failure report for idle node", "node_id", nodeID)
	}
}

var _ ReportHandler = (*Controller)(nil)
