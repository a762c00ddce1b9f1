package api

import (
	"net/http"

	"github.com/mash-protocol/matter-bridge/pkg/controller"
)

// HandleGroupSettings handles POST /api/group-settings. Actions:
// show-groups, add-group (group_id + group_name), remove-group (group_id).
func (b *BridgeAPI) HandleGroupSettings(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req GroupSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid 'action' field")
		return
	}

	switch req.Action {
	case "show-groups":
		groups, err := b.ctrl.ListGroups()
		if err != nil {
			writeControllerError(w, err)
			return
		}
		if groups == nil {
			groups = []controller.GroupInfo{}
		}
		writeJSONResponse(w, http.StatusOK, map[string]any{
			"status":  StatusSuccess,
			"message": "Group settings command executed successfully",
			"groups":  groups,
		})
		return

	case "add-group":
		gid, gerr := parseUint(req.GroupID, 16)
		if gerr != nil || req.GroupName == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing group_id or group_name")
			return
		}
		if err := b.ctrl.AddGroup(req.GroupName, uint16(gid)); err != nil {
			writeControllerError(w, err)
			return
		}

	case "remove-group":
		gid, gerr := parseUint(req.GroupID, 16)
		if gerr != nil {
			writeJSONError(w, http.StatusBadRequest, "Missing group_id")
			return
		}
		if err := b.ctrl.RemoveGroup(uint16(gid)); err != nil {
			writeControllerError(w, err)
			return
		}

	default:
		writeJSONError(w, http.StatusBadRequest, "Unsupported action")
		return
	}

	b.log.Info("group settings updated", "action", req.Action, "group_id", req.GroupID)
	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "Group settings command executed successfully",
	})
}

// HandleUDC handles POST /api/udc. Actions: reset, print, commission
// (pincode + index of the pending request).
func (b *BridgeAPI) HandleUDC(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req UDCRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid 'action' field")
		return
	}

	switch req.Action {
	case "reset":
		if err := b.ctrl.ResetUDCClients(); err != nil {
			writeControllerError(w, err)
			return
		}

	case "print":
		clients, err := b.ctrl.ListUDCClients()
		if err != nil {
			writeControllerError(w, err)
			return
		}
		if clients == nil {
			clients = []string{}
		}
		writeJSONResponse(w, http.StatusOK, map[string]any{
			"status":  StatusSuccess,
			"message": "UDC command executed successfully",
			"clients": clients,
		})
		return

	case "commission":
		pin, perr := parseUint(req.Pincode, 32)
		idx, ierr := parseUint(req.Index, 32)
		if perr != nil || ierr != nil {
			writeJSONError(w, http.StatusBadRequest, "Missing pincode or index")
			return
		}
		if err := b.ctrl.CommissionUDCClient(int(idx), uint32(pin)); err != nil {
			writeControllerError(w, err)
			return
		}

	default:
		writeJSONError(w, http.StatusBadRequest, "Unsupported UDC action")
		return
	}

	b.log.Info("UDC command executed", "action", req.Action)
	writeJSONResponse(w, http.StatusOK, StatusResponse{
		Status:  StatusSuccess,
		Message: "UDC command executed successfully",
	})
}
