package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mash-protocol/matter-bridge/pkg/nodestore"
)

// NodesAPI serves the commissioned-node registry.
type NodesAPI struct {
	store *nodestore.Store
	log   *slog.Logger
}

// NewNodesAPI creates the nodes API over a store.
func NewNodesAPI(store *nodestore.Store, logger *slog.Logger) *NodesAPI {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NodesAPI{store: store, log: logger}
}

// HandleNodes handles GET /api/nodes.
func (n *NodesAPI) HandleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	nodes, err := n.store.List()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to list nodes")
		return
	}

	infos := make([]NodeInfo, 0, len(nodes))
	for _, node := range nodes {
		infos = append(infos, NodeInfo{
			ID:       node.ID,
			NodeID:   "0x" + strconv.FormatUint(node.NodeID, 16),
			Name:     node.Name,
			Method:   node.Method,
			PairedAt: node.PairedAt.Format(time.RFC3339),
		})
	}

	writeJSONResponse(w, http.StatusOK, NodeListResponse{
		Nodes: infos,
		Total: len(infos),
	})
}

// HandleNodeByID handles DELETE /api/nodes/{node_id}.
func (n *NodesAPI) HandleNodeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/nodes/")
	nodeID, err := parseNodeID(idStr)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid node id")
		return
	}

	if err := n.store.Remove(nodeID); err != nil {
		if errors.Is(err, nodestore.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Node not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to remove node")
		return
	}

	n.log.Info("node removed", "node_id", nodeID)
	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Node removed",
	})
}
