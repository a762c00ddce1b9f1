package api

import (
	"net/http"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/discovery"
)

// DevicesAPI serves mDNS device discovery.
type DevicesAPI struct{}

// NewDevicesAPI creates the devices API.
func NewDevicesAPI() *DevicesAPI {
	return &DevicesAPI{}
}

// HandleDevices handles GET /api/devices. The optional timeout query
// parameter bounds the browse ("5s", default 10s); mode=operational
// browses commissioned devices instead of commissionable ones.
func (d *DevicesAPI) HandleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	timeout := discovery.DefaultBrowseTimeout
	if t := r.URL.Query().Get("timeout"); t != "" {
		parsed, err := time.ParseDuration(t)
		if err != nil || parsed <= 0 || parsed > time.Minute {
			writeJSONError(w, http.StatusBadRequest, "Invalid timeout parameter")
			return
		}
		timeout = parsed
	}

	browser := discovery.NewBrowser(timeout)

	var (
		devices []discovery.Device
		err     error
	)
	if r.URL.Query().Get("mode") == "operational" {
		devices, err = browser.BrowseOperational(r.Context())
	} else {
		devices, err = browser.BrowseCommissionable(r.Context())
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Discovery failed")
		return
	}

	list := make([]any, 0, len(devices))
	for _, dev := range devices {
		list = append(list, dev)
	}
	writeJSONResponse(w, http.StatusOK, DeviceListResponse{
		Devices: list,
		Timeout: timeout.String(),
	})
}
