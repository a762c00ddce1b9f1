package controller

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PAKE verifier parameters for the enhanced commissioning window.
const (
	pakeSaltLen     = 16
	pakeVerifierLen = 80

	// MinPBKDFIterations and MaxPBKDFIterations bound the iteration
	// count accepted for verifier derivation.
	MinPBKDFIterations = 1000
	MaxPBKDFIterations = 100000
)

// withStackLock runs fn under the stack lock with the configured bound.
func (c *Controller) withStackLock(fn func() error) error {
	if !c.lock.Acquire(c.opts.StackLockTimeout) {
		return ErrStackBusy
	}
	defer c.lock.Release()
	return fn()
}

// PairOnNetwork commissions a device that is already on the network.
func (c *Controller) PairOnNetwork(nodeID uint64, pincode uint32) error {
	return c.withStackLock(func() error {
		return c.sub.PairOnNetwork(nodeID, pincode)
	})
}

// PairCode commissions a device from its setup payload.
func (c *Controller) PairCode(nodeID uint64, payload string) error {
	return c.withStackLock(func() error {
		return c.sub.PairCode(nodeID, payload)
	})
}

// PairBLEWiFi commissions a device over BLE onto the given Wi-Fi network.
func (c *Controller) PairBLEWiFi(nodeID uint64, pincode uint32, discriminator uint16, ssid, password string) error {
	return c.withStackLock(func() error {
		return c.sub.PairBLEWiFi(nodeID, pincode, discriminator, ssid, password)
	})
}

// PairBLEThread commissions a device over BLE with a Thread dataset.
func (c *Controller) PairBLEThread(nodeID uint64, pincode uint32, discriminator uint16, dataset []byte) error {
	return c.withStackLock(func() error {
		return c.sub.PairBLEThread(nodeID, pincode, discriminator, dataset)
	})
}

// OpenCommissioningWindow opens a commissioning window on a node. For the
// enhanced option it derives the PAKE salt and verifier from the pincode
// before touching the stack, so the lock is held only for the call itself.
func (c *Controller) OpenCommissioningWindow(nodeID uint64, pincode uint32, opts WindowOptions) error {
	if opts.Enhanced {
		if opts.Iterations < MinPBKDFIterations || opts.Iterations > MaxPBKDFIterations {
			return fmt.Errorf("pbkdf iterations %d out of range [%d, %d]",
				opts.Iterations, MinPBKDFIterations, MaxPBKDFIterations)
		}
		salt := make([]byte, pakeSaltLen)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("failed to generate PAKE salt: %w", err)
		}
		pin := make([]byte, 4)
		binary.LittleEndian.PutUint32(pin, pincode)
		opts.Salt = salt
		opts.Verifier = pbkdf2.Key(pin, salt, int(opts.Iterations), pakeVerifierLen, sha256.New)
	}

	return c.withStackLock(func() error {
		return c.sub.OpenCommissioningWindow(nodeID, opts)
	})
}

// Subscribe starts an attribute or event subscription on a node. Reports
// are delivered by the stack out of band; the call only submits the
// subscription.
func (c *Controller) Subscribe(nodeID uint64, opts SubscribeOptions) error {
	return c.withStackLock(func() error {
		return c.sub.Subscribe(nodeID, opts)
	})
}

// ShutdownSubscription tears down one subscription on a node.
func (c *Controller) ShutdownSubscription(nodeID uint64, subscriptionID uint32) error {
	return c.withStackLock(func() error {
		return c.sub.ShutdownSubscription(nodeID, subscriptionID)
	})
}

// ShutdownSubscriptions tears down all subscriptions for a node.
func (c *Controller) ShutdownSubscriptions(nodeID uint64) error {
	return c.withStackLock(func() error {
		return c.sub.ShutdownSubscriptions(nodeID)
	})
}

// ShutdownAllSubscriptions tears down every subscription.
func (c *Controller) ShutdownAllSubscriptions() error {
	return c.withStackLock(func() error {
		return c.sub.ShutdownAllSubscriptions()
	})
}

// StartBLEScan starts a bounded BLE discovery scan.
func (c *Controller) StartBLEScan(timeout time.Duration) error {
	return c.withStackLock(func() error {
		return c.sub.StartBLEScan(timeout)
	})
}

// AddGroup configures a multicast group on the controller.
func (c *Controller) AddGroup(name string, groupID uint16) error {
	return c.withStackLock(func() error {
		return c.sub.AddGroup(name, groupID)
	})
}

// RemoveGroup removes a configured group.
func (c *Controller) RemoveGroup(groupID uint16) error {
	return c.withStackLock(func() error {
		return c.sub.RemoveGroup(groupID)
	})
}

// ListGroups returns the configured groups.
func (c *Controller) ListGroups() ([]GroupInfo, error) {
	var groups []GroupInfo
	err := c.withStackLock(func() error {
		var lerr error
		groups, lerr = c.sub.ListGroups()
		return lerr
	})
	return groups, err
}

// ResetUDCClients clears all pending user-directed commissioning requests.
func (c *Controller) ResetUDCClients() error {
	return c.withStackLock(func() error {
		return c.sub.ResetUDCClients()
	})
}

// ListUDCClients describes the pending user-directed commissioning
// requests.
func (c *Controller) ListUDCClients() ([]string, error) {
	var clients []string
	err := c.withStackLock(func() error {
		var lerr error
		clients, lerr = c.sub.ListUDCClients()
		return lerr
	})
	return clients, err
}

// CommissionUDCClient commissions the pending user-directed commissioning
// request at index.
func (c *Controller) CommissionUDCClient(index int, pincode uint32) error {
	return c.withStackLock(func() error {
		return c.sub.CommissionUDCClient(index, pincode)
	})
}
