package correlate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

func boolItem(ep uint16, b bool) Item {
	return Item{
		Path:  wire.Path{EndpointID: ep, ClusterID: 0x0006},
		Value: wire.Value{Type: wire.TypeBoolean, Bool: b},
	}
}

func TestContextAppendPreservesOrder(t *testing.T) {
	c := NewContext(1, 3)

	c.AppendItem(boolItem(1, true))
	c.AppendItem(boolItem(2, false))
	c.AppendItem(boolItem(3, true))

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, ep := range []uint16{1, 2, 3} {
		if items[i].Path.EndpointID != ep {
			t.Errorf("item %d: expected endpoint %d, got %d", i, ep, items[i].Path.EndpointID)
		}
	}
	if c.Received() != 3 {
		t.Errorf("expected received 3, got %d", c.Received())
	}
	if !c.OK() {
		t.Error("expected ok after items")
	}
}

func TestContextCompleteIdempotent(t *testing.T) {
	c := NewContext(1, 1)

	c.Complete()
	c.Complete()
	c.Complete()

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestTableRegisterAndRemove(t *testing.T) {
	tbl := NewTable(0)
	c := NewContext(42, 1)

	if err := tbl.Register(42, c); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", tbl.Len())
	}

	if !tbl.Remove(42) {
		t.Error("expected remove to find the entry")
	}
	if tbl.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", tbl.Len())
	}
	if tbl.Remove(42) {
		t.Error("second remove should report missing")
	}
}

func TestTableRejectsDuplicateKey(t *testing.T) {
	tbl := NewTable(0)

	if err := tbl.Register(7, NewContext(7, 1)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	err := tbl.Register(7, NewContext(7, 1))
	if !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}

	// The original entry survives the rejected registration.
	if tbl.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", tbl.Len())
	}
}

func TestTableWithContextUnknownKeyIsNoop(t *testing.T) {
	tbl := NewTable(0)

	called := false
	if tbl.WithContext(99, func(*Context) { called = true }) {
		t.Error("expected lookup miss")
	}
	if called {
		t.Error("fn must not run for an unknown key")
	}
}

func TestTableBoundedLockAcquisition(t *testing.T) {
	tbl := NewTable(20 * time.Millisecond)

	// Hold the table lock from another goroutine past the bound.
	tbl.mu.lock()
	release := make(chan struct{})
	go func() {
		<-release
		tbl.mu.unlock()
	}()
	defer close(release)

	if err := tbl.Register(1, NewContext(1, 1)); !errors.Is(err, ErrTableBusy) {
		t.Fatalf("expected ErrTableBusy, got %v", err)
	}
	if tbl.WithContext(1, func(*Context) {}) {
		t.Error("expected WithContext to give up within the bound")
	}
}

func TestTableConcurrentDistinctKeys(t *testing.T) {
	tbl := NewTable(0)

	var wg sync.WaitGroup
	for key := uint64(1); key <= 8; key++ {
		wg.Add(1)
		go func(k uint64) {
			defer wg.Done()
			c := NewContext(k, 2)
			if err := tbl.Register(k, c); err != nil {
				t.Errorf("register %d: %v", k, err)
				return
			}
			for i := 0; i < 2; i++ {
				tbl.WithContext(k, func(rc *Context) {
					rc.AppendItem(boolItem(uint16(k), true))
				})
			}
			tbl.WithContext(k, func(rc *Context) { rc.Complete() })
			<-c.Done()
			tbl.Remove(k)
			if got := c.Received(); got != 2 {
				t.Errorf("key %d: expected 2 items, got %d", k, got)
			}
		}(key)
	}
	wg.Wait()

	if tbl.Len() != 0 {
		t.Errorf("expected table back to baseline, got %d entries", tbl.Len())
	}
}
