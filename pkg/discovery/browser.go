// Package discovery browses mDNS for Matter devices: commissionable nodes
// announcing on _matterc._udp and commissioned nodes on _matter._tcp.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Matter mDNS service types.
const (
	ServiceTypeCommissionable = "_matterc._udp"
	ServiceTypeOperational    = "_matter._tcp"
	Domain                    = "local."
)

// DefaultBrowseTimeout bounds a browse when the caller supplies none.
const DefaultBrowseTimeout = 10 * time.Second

// Device is one discovered service instance.
type Device struct {
	InstanceName      string   `json:"instance_name"`
	Host              string   `json:"host"`
	Port              uint16   `json:"port"`
	Addresses         []string `json:"addresses"`
	Discriminator     uint16   `json:"discriminator,omitempty"`
	VendorID          uint16   `json:"vendor_id,omitempty"`
	ProductID         uint16   `json:"product_id,omitempty"`
	DeviceName        string   `json:"device_name,omitempty"`
	CommissioningMode int      `json:"commissioning_mode,omitempty"`
}

// Browser discovers Matter services on the local network.
type Browser struct {
	timeout time.Duration
}

// NewBrowser creates a browser. A non-positive timeout selects
// DefaultBrowseTimeout.
func NewBrowser(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}
	return &Browser{timeout: timeout}
}

// BrowseCommissionable collects commissionable devices until the browse
// timeout or ctx expires, aggregating repeated announcements by instance
// name.
func (b *Browser) BrowseCommissionable(ctx context.Context) ([]Device, error) {
	return b.browse(ctx, ServiceTypeCommissionable)
}

// BrowseOperational collects commissioned devices.
func (b *Browser) BrowseOperational(ctx context.Context) ([]Device, error) {
	return b.browse(ctx, ServiceTypeOperational)
}

func (b *Browser) browse(ctx context.Context, serviceType string) ([]Device, error) {
	browseCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	collected := collect(browseCtx, entries, removed)

	err := zeroconf.Browse(browseCtx, serviceType, Domain, entries, removed)
	timedOut := browseCtx.Err() != nil
	cancel() // unblock the collector if Browse failed early
	devices := <-collected
	if err != nil && !timedOut && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	return devices, nil
}

// collect aggregates announcements by instance name until ctx expires,
// then delivers the device list on the returned channel. A closed input
// channel is parked (set to nil) so the loop keeps blocking on ctx
// instead of spinning on the closed channel.
func collect(ctx context.Context, entries, removed <-chan *zeroconf.ServiceEntry) <-chan []Device {
	collected := make(chan []Device, 1)
	go func() {
		seen := make(map[string]*Device)
		var order []string
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					entries = nil
					continue
				}
				dev := entryToDevice(entry)
				if existing, found := seen[dev.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, dev.Addresses)
					continue
				}
				seen[dev.InstanceName] = dev
				order = append(order, dev.InstanceName)
			case _, ok := <-removed:
				// Ignore removals during a bounded collection pass.
				if !ok {
					removed = nil
				}
			case <-ctx.Done():
				devices := make([]Device, 0, len(order))
				for _, name := range order {
					devices = append(devices, *seen[name])
				}
				collected <- devices
				return
			}
		}
	}()
	return collected
}

func entryToDevice(entry *zeroconf.ServiceEntry) *Device {
	info := parseTXT(entry.Text)

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Device{
		InstanceName:      entry.Instance,
		Host:              entry.HostName,
		Port:              uint16(entry.Port),
		Addresses:         addrs,
		Discriminator:     info.Discriminator,
		VendorID:          info.VendorID,
		ProductID:         info.ProductID,
		DeviceName:        info.DeviceName,
		CommissioningMode: info.CommissioningMode,
	}
}

func mergeAddresses(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range extra {
		if !seen[a] {
			existing = append(existing, a)
			seen[a] = true
		}
	}
	return existing
}
