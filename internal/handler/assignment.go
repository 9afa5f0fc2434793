package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/store"
	"github.com/williamwmy/fantastic-task/internal/websocket"
)

type AssignmentHandler struct {
	assignments *store.AssignmentStore
	tasks       *store.TaskStore
	members     *store.MemberStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewAssignmentHandler(assignments *store.AssignmentStore, tasks *store.TaskStore, members *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, tasks: tasks, members: members, hub: hub, logger: logger}
}

type assignmentRequest struct {
	TaskID   int64  `json:"task_id"`
	MemberID *int64 `json:"member_id"`
	DueDate  string `json:"due_date"`
}

// Create plans a task for a date, optionally assigned to a member.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		writeError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}

	familyID := auth.FamilyID(r.Context())
	task, err := h.tasks.GetByID(req.TaskID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check task")
		return
	}
	if task == nil || task.FamilyID != familyID {
		writeError(w, http.StatusBadRequest, "task not found")
		return
	}

	if req.MemberID != nil {
		member, err := h.members.GetByID(*req.MemberID)
		if err != nil {
			h.logger.Error("get member", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check member")
			return
		}
		if member == nil || member.FamilyID != familyID {
			writeError(w, http.StatusBadRequest, "member not found")
			return
		}
	}

	assignment, err := h.assignments.Create(req.TaskID, req.MemberID, req.DueDate, false)
	if err != nil {
		h.logger.Error("create assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(familyID, websocket.Event{Event: websocket.EventTasksChanged, ID: assignment.ID})
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// List returns the family's assignments for one date.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	assignments, err := h.assignments.ListByDate(auth.FamilyID(r.Context()), date)
	if err != nil {
		h.logger.Error("list assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Delete removes a planned assignment.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	assignment, err := h.assignments.GetByID(id)
	if err != nil {
		h.logger.Error("get assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get assignment")
		return
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}
	task, err := h.tasks.GetByID(assignment.TaskID)
	if err != nil || task == nil || task.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	if err := h.assignments.Delete(id); err != nil {
		h.logger.Error("delete assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete assignment")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(task.FamilyID, websocket.Event{Event: websocket.EventTasksChanged, ID: id})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
