package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/store"
)

type FamilyHandler struct {
	families *store.FamilyStore
	logger   *slog.Logger
}

func NewFamilyHandler(families *store.FamilyStore, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{families: families, logger: logger}
}

func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	family, err := h.families.GetByID(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, family)
}

type familyRequest struct {
	Name                     string `json:"name"`
	RequireChildVerification bool   `json:"require_child_verification"`
}

// Update changes the family name and verification policy. Admin-only,
// enforced by routing.
func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	family, err := h.families.Update(auth.FamilyID(r.Context()), req.Name, req.RequireChildVerification)
	if err != nil {
		h.logger.Error("update family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update family")
		return
	}
	writeJSON(w, http.StatusOK, family)
}
