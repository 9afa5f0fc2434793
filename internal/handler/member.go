package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/points"
	"github.com/williamwmy/fantastic-task/internal/store"
	"github.com/williamwmy/fantastic-task/internal/websocket"
)

type MemberHandler struct {
	members *store.MemberStore
	ledger  *store.LedgerStore
	engine  *points.Engine
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(members *store.MemberStore, ledger *store.LedgerStore, engine *points.Engine, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: members, ledger: ledger, engine: engine, hub: hub, logger: logger}
}

func (h *MemberHandler) broadcast(familyID int64, ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(familyID, ev)
	}
}

type memberRequest struct {
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleMember || role == model.RoleChild
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}
	if !validRole(req.Role) {
		writeError(w, http.StatusBadRequest, "role must be admin, member or child")
		return
	}

	familyID := auth.FamilyID(r.Context())
	member, err := h.members.Create(familyID, req.Nickname, req.Role)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, http.StatusConflict, "nickname already in use")
		return
	}

	h.broadcast(familyID, websocket.Event{Event: websocket.EventMembersChanged, ID: member.ID})
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" || !validRole(req.Role) {
		writeError(w, http.StatusBadRequest, "nickname and a valid role are required")
		return
	}

	updated, err := h.members.Update(member.ID, req.Nickname, req.Role)
	if err != nil {
		h.logger.Error("update member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update member")
		return
	}

	h.broadcast(member.FamilyID, websocket.Event{Event: websocket.EventMembersChanged, ID: member.ID})
	writeJSON(w, http.StatusOK, updated)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}

	if err := h.members.Delete(member.ID); err != nil {
		h.logger.Error("delete member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete member")
		return
	}

	h.broadcast(member.FamilyID, websocket.Event{Event: websocket.EventMembersChanged, ID: member.ID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// SetPIN sets or changes a member's login PIN. Members change their own;
// admins may set anyone's in the family.
func (h *MemberHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}
	ac, _ := auth.FromContext(r.Context())
	if member.ID != ac.MemberID && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot change another member's PIN")
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.PIN) < 4 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be at least 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.members.SetPIN(member.ID, string(hash)); err != nil {
		h.logger.Error("set pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *MemberHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}
	ac, _ := auth.FromContext(r.Context())
	if member.ID != ac.MemberID && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot clear another member's PIN")
		return
	}

	if err := h.members.ClearPIN(member.ID); err != nil {
		h.logger.Error("clear pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

// Transactions returns a member's ledger, newest first. ?type=earned
// filters by transaction type.
func (h *MemberHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}

	txs, err := h.ledger.ListByMember(member.ID, r.URL.Query().Get("type"))
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []model.PointsTransaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *MemberHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.members.Leaderboard(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if board == nil {
		board = []model.PointBalance{}
	}
	writeJSON(w, http.StatusOK, board)
}

// Reconcile recomputes a member's balance from the ledger, repairing any
// drift. Admin-only.
func (h *MemberHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownedMember(w, r)
	if !ok {
		return
	}

	balance, drifted, err := h.engine.Reconcile(member.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": balance, "drifted": drifted})
}

func (h *MemberHandler) ownedMember(w http.ResponseWriter, r *http.Request) (*model.Member, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	member, err := h.members.GetByID(id)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return nil, false
	}
	if member == nil || member.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "member not found")
		return nil, false
	}
	return member, true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
