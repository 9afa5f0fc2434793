package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/points"
	"github.com/williamwmy/fantastic-task/internal/store"
)

type CompletionHandler struct {
	completions *store.CompletionStore
	members     *store.MemberStore
	engine      *points.Engine
	logger      *slog.Logger
}

func NewCompletionHandler(completions *store.CompletionStore, members *store.MemberStore, engine *points.Engine, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{completions: completions, members: members, engine: engine, logger: logger}
}

// Undo deletes a completion and rolls its ledger entries out of the
// member's balance. Members undo their own completions; admins anyone's.
func (h *CompletionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	completion, ok := h.ownedCompletion(w, r)
	if !ok {
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if completion.MemberID != ac.MemberID && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot undo another member's completion")
		return
	}

	balance, err := h.engine.UndoCompletion(completion.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "undone", "new_balance": balance})
}

// Pending lists the family's completions waiting for verification, oldest
// first.
func (h *CompletionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if !auth.CanVerify(r.Context()) {
		writeError(w, http.StatusForbidden, "children cannot review completions")
		return
	}

	pending, err := h.completions.ListPendingByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list pending", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending completions")
		return
	}
	if pending == nil {
		pending = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, pending)
}

type verifyRequest struct {
	Approved bool `json:"approved"`
}

// Verify approves or rejects a pending completion.
func (h *CompletionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	actor, err := h.members.GetByID(ac.MemberID)
	if err != nil || actor == nil {
		h.logger.Error("verify actor lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	res, err := h.engine.VerifyCompletion(id, req.Approved, *actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Stats returns the family's completions in a date range, for weekly
// summaries and charts.
func (h *CompletionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse("2006-01-02", q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	// Make the range inclusive of the whole end day.
	completions, err := h.completions.ListByDateRange(auth.FamilyID(r.Context()), start, end.Add(24*time.Hour))
	if err != nil {
		h.logger.Error("stats range", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load completions")
		return
	}
	if completions == nil {
		completions = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

func (h *CompletionHandler) ownedCompletion(w http.ResponseWriter, r *http.Request) (*model.Completion, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	completion, err := h.completions.GetByID(id)
	if err != nil {
		h.logger.Error("get completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get completion")
		return nil, false
	}
	if completion == nil {
		writeError(w, http.StatusNotFound, "completion not found")
		return nil, false
	}
	member, err := h.members.GetByID(completion.MemberID)
	if err != nil || member == nil || member.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "completion not found")
		return nil, false
	}
	return completion, true
}
