package discovery

import (
	"strconv"
	"strings"
)

// Matter commissionable TXT record keys.
const (
	txtKeyDiscriminator     = "D"
	txtKeyVendorProduct     = "VP"
	txtKeyDeviceName        = "DN"
	txtKeyDeviceType        = "DT"
	txtKeyCommissioningMode = "CM"
)

// txtInfo is the parsed TXT record of a commissionable service.
type txtInfo struct {
	Discriminator     uint16
	VendorID          uint16
	ProductID         uint16
	DeviceName        string
	DeviceType        uint32
	CommissioningMode int
}

// parseTXT extracts the known Matter keys from TXT strings. Unknown keys
// and malformed values are skipped; the record is best-effort by design.
func parseTXT(records []string) txtInfo {
	var info txtInfo
	for _, rec := range records {
		key, value, ok := strings.Cut(rec, "=")
		if !ok {
			continue
		}
		switch key {
		case txtKeyDiscriminator:
			if v, err := strconv.ParseUint(value, 10, 16); err == nil {
				info.Discriminator = uint16(v)
			}
		case txtKeyVendorProduct:
			// "vendorID+productID", productID optional.
			vid, pid, hasPid := strings.Cut(value, "+")
			if v, err := strconv.ParseUint(vid, 10, 16); err == nil {
				info.VendorID = uint16(v)
			}
			if hasPid {
				if v, err := strconv.ParseUint(pid, 10, 16); err == nil {
					info.ProductID = uint16(v)
				}
			}
		case txtKeyDeviceName:
			info.DeviceName = value
		case txtKeyDeviceType:
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				info.DeviceType = uint32(v)
			}
		case txtKeyCommissioningMode:
			if v, err := strconv.Atoi(value); err == nil {
				info.CommissioningMode = v
			}
		}
	}
	return info
}
