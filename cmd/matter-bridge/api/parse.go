package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// parseUint parses a decimal or 0x-prefixed hex id string.
func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}

func parseNodeID(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("node_id is required")
	}
	return parseUint(s, 64)
}

// parseUint16List parses a comma-separated list of 16-bit ids.
func parseUint16List(s string) ([]uint16, error) {
	if s == "" {
		return nil, fmt.Errorf("empty id list")
	}
	parts := strings.Split(s, ",")
	out := make([]uint16, 0, len(parts))
	for _, p := range parts {
		v, err := parseUint(p, 16)
		if err != nil {
			return nil, err
		}
		out = append(out, uint16(v))
	}
	return out, nil
}

// parseUint32List parses a comma-separated list of 32-bit ids.
func parseUint32List(s string) ([]uint32, error) {
	if s == "" {
		return nil, fmt.Errorf("empty id list")
	}
	parts := strings.Split(s, ",")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := parseUint(p, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

// zipPaths combines the three id lists into concrete paths. Lists must
// either share one length or hold a single element, which is broadcast
// across the longest list.
func zipPaths(endpoints []uint16, clusters, attributes []uint32) ([]wire.Path, error) {
	n := len(endpoints)
	if len(clusters) > n {
		n = len(clusters)
	}
	if len(attributes) > n {
		n = len(attributes)
	}

	pick16 := func(list []uint16, i int) (uint16, error) {
		if len(list) == 1 {
			return list[0], nil
		}
		if i >= len(list) {
			return 0, fmt.Errorf("id list lengths do not match")
		}
		return list[i], nil
	}
	pick32 := func(list []uint32, i int) (uint32, error) {
		if len(list) == 1 {
			return list[0], nil
		}
		if i >= len(list) {
			return 0, fmt.Errorf("id list lengths do not match")
		}
		return list[i], nil
	}

	paths := make([]wire.Path, 0, n)
	for i := 0; i < n; i++ {
		ep, err := pick16(endpoints, i)
		if err != nil {
			return nil, err
		}
		cl, err := pick32(clusters, i)
		if err != nil {
			return nil, err
		}
		at, err := pick32(attributes, i)
		if err != nil {
			return nil, err
		}
		paths = append(paths, wire.Path{EndpointID: ep, ClusterID: cl, AttributeID: at})
	}
	return paths, nil
}

// parsePathLists parses and zips the three list fields of a request.
func parsePathLists(endpointIDs, clusterIDs, attributeIDs string) ([]wire.Path, error) {
	eps, err := parseUint16List(endpointIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint_ids format")
	}
	cls, err := parseUint32List(clusterIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid cluster_ids format")
	}
	attrs, err := parseUint32List(attributeIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid attribute_ids format")
	}
	return zipPaths(eps, cls, attrs)
}
