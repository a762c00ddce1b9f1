package correlate

import (
	"sync"

	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// Item is one decoded report: the path it was reported for and its value,
// in callback arrival order.
type Item struct {
	Path  wire.Path
	Value wire.Value
}

// Context accumulates the asynchronous results for one request.
//
// Mutating methods must only be called through Table.WithContext, which
// serializes them under the table lock. The requester may read the context
// freely once it has removed the entry from the table: at that point no
// callback can reach it anymore.
type Context struct {
	key      uint64
	expected int

	items    []Item
	received int
	ok       bool
	errMsg   string

	done     chan struct{}
	doneOnce sync.Once
}

// NewContext creates a context for one request expecting the given number
// of report items.
func NewContext(key uint64, expected int) *Context {
	return &Context{
		key:      key,
		expected: expected,
		items:    make([]Item, 0, expected),
		done:     make(chan struct{}),
	}
}

// Key returns the correlation key the context was created for.
func (c *Context) Key() uint64 { return c.key }

// Expected returns the expected item count.
func (c *Context) Expected() int { return c.expected }

// AppendItem records one arrived report item and marks the request
// successful so far.
func (c *Context) AppendItem(it Item) {
	c.items = append(c.items, it)
	c.received++
	c.ok = true
}

// Fail records a short error message without completing the context.
func (c *Context) Fail(msg string) {
	c.ok = false
	c.errMsg = msg
}

// Complete fires the completion channel. Safe to call more than once;
// calls after the first are no-ops.
func (c *Context) Complete() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Done returns the completion channel. It is closed exactly once, when the
// stack delivers its terminal callback.
func (c *Context) Done() <-chan struct{} { return c.done }

// Items returns the accumulated items in arrival order.
func (c *Context) Items() []Item { return c.items }

// Received returns the number of items that arrived.
func (c *Context) Received() int { return c.received }

// OK reports whether at least one item arrived and no failure was recorded.
func (c *Context) OK() bool { return c.ok }

// ErrMessage returns the recorded failure message, if any.
func (c *Context) ErrMessage() string { return c.errMsg }
