// Package controller implements the controller side of the bridge: it
// submits commands to the device stack and turns the stack's asynchronous
// callbacks into synchronous, bounded-timeout results.
//
// Two locks exist and are never held across a blocking wait. The stack
// lock serializes access to the device stack itself and is held only for
// the submission call; it is shared with pairing, commissioning and scan
// operations. The correlation table lock (in package correlate) guards
// single map operations. The only long wait is on a request's own
// completion channel, with no lock held.
//
// A read request flows through PerformRequest:
//
//	res := ctrl.PerformRequest(ctx, nodeID, cmd, expected, timeout)
//	switch res.Outcome {
//	case controller.OutcomeSuccess: // res.Items in arrival order
//	case controller.OutcomeTimeout: // fate unknown, items discarded
//	case controller.OutcomeError:   // res.Err, e.g. ErrStackBusy
//	}
//
// The stack invokes OnReportData once per decoded item and OnReadDone once
// per accepted submission, from its own goroutine. Both drop updates for
// unknown node ids: a request that timed out has already removed its table
// entry and late callbacks must not block or crash.
package controller
