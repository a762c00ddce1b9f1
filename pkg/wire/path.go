package wire

import "fmt"

// Path identifies one addressable attribute or event on a device:
// an endpoint, a cluster on that endpoint, and an attribute or event
// within the cluster.
type Path struct {
	EndpointID  uint16
	ClusterID   uint32
	AttributeID uint32
}

// String returns the path in endpoint/cluster/attribute form with
// hexadecimal cluster and attribute ids, matching device-stack logs.
func (p Path) String() string {
	return fmt.Sprintf("%d/0x%04X/0x%04X", p.EndpointID, p.ClusterID, p.AttributeID)
}
