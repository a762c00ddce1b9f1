package api

import (
	"testing"

	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

func TestParseUintAcceptsHex(t *testing.T) {
	v, err := parseUint("0x1122", 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1122 {
		t.Errorf("expected 0x1122, got %#x", v)
	}

	v, err = parseUint("42", 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestParseUint16ListRejectsOverflow(t *testing.T) {
	if _, err := parseUint16List("1,70000"); err == nil {
		t.Error("expected overflow rejection")
	}
	if _, err := parseUint16List(""); err == nil {
		t.Error("expected empty list rejection")
	}
}

func TestZipPathsBroadcast(t *testing.T) {
	paths, err := zipPaths([]uint16{1, 2}, []uint32{6}, []uint32{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []wire.Path{
		{EndpointID: 1, ClusterID: 6, AttributeID: 0},
		{EndpointID: 2, ClusterID: 6, AttributeID: 0},
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d", len(want), len(paths))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: expected %v, got %v", i, want[i], paths[i])
		}
	}
}

func TestZipPathsRejectsMismatchedLengths(t *testing.T) {
	if _, err := zipPaths([]uint16{1, 2}, []uint32{6, 8, 9}, []uint32{0}); err == nil {
		t.Error("expected length mismatch rejection")
	}
}

func TestParsePathListsHex(t *testing.T) {
	paths, err := parsePathLists("1", "0x0006", "0x0000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0].ClusterID != 6 {
		t.Errorf("unexpected paths %v", paths)
	}
}
