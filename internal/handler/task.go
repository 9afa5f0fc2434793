package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/points"
	"github.com/williamwmy/fantastic-task/internal/schedule"
	"github.com/williamwmy/fantastic-task/internal/store"
	"github.com/williamwmy/fantastic-task/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	engine *points.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, engine *points.Engine, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, engine: engine, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(familyID int64, ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(familyID, ev)
	}
}

type taskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Points           int    `json:"points"`
	EstimatedMinutes *int   `json:"estimated_minutes"`
	RecurrenceMask   string `json:"recurrence_mask"`
	Active           *bool  `json:"active"`
}

func (h *TaskHandler) validate(req *taskRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	if !schedule.ValidMask(req.RecurrenceMask) {
		return "recurrence_mask must be empty or seven 0/1 characters"
	}
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	familyID := auth.FamilyID(r.Context())
	task, err := h.tasks.Create(familyID, req.Title, req.Description, req.Points, req.EstimatedMinutes, req.RecurrenceMask)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(familyID, websocket.Event{Event: websocket.EventTasksChanged, ID: task.ID})
	writeJSON(w, http.StatusCreated, task)
}

// List returns the family's tasks. With ?due=YYYY-MM-DD only active tasks
// recurring on that date are returned; with ?active=true inactive tasks
// are filtered out.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if date := r.URL.Query().Get("due"); date != "" {
		active, err := h.tasks.ListActiveByFamily(familyID)
		if err != nil {
			h.logger.Error("list tasks", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tasks")
			return
		}
		due, err := schedule.DueOn(active, date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due date")
			return
		}
		result := make([]model.Task, 0, len(due))
		for _, d := range due {
			result = append(result, d.Task)
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	var tasks []model.Task
	var err error
	if r.URL.Query().Get("active") == "true" {
		tasks, err = h.tasks.ListActiveByFamily(familyID)
	} else {
		tasks, err = h.tasks.ListByFamily(familyID)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	task, err := h.tasks.Update(existing.ID, req.Title, req.Description, req.Points, req.EstimatedMinutes, req.RecurrenceMask, active)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(task.FamilyID, websocket.Event{Event: websocket.EventTasksChanged, ID: task.ID})
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(task.ID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(task.FamilyID, websocket.Event{Event: websocket.EventTasksChanged, ID: task.ID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type completeRequest struct {
	MemberID         int64  `json:"member_id"`
	Date             string `json:"date"`
	Comment          string `json:"comment"`
	TimeSpentMinutes *int   `json:"time_spent_minutes"`
	BonusPoints      int    `json:"bonus_points"`
	AssignmentID     *int64 `json:"assignment_id"`
}

// Complete records a task completion. Members complete for themselves;
// admins may record on another member's behalf.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	memberID := ac.MemberID
	if req.MemberID != 0 && req.MemberID != ac.MemberID {
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "only admins can complete for another member")
			return
		}
		memberID = req.MemberID
	}
	if req.BonusPoints != 0 && !auth.CanVerify(r.Context()) {
		writeError(w, http.StatusForbidden, "children cannot grant bonus points")
		return
	}

	res, err := h.engine.CompleteTask(points.CompleteRequest{
		TaskID:           task.ID,
		MemberID:         memberID,
		Date:             req.Date,
		Comment:          req.Comment,
		TimeSpentMinutes: req.TimeSpentMinutes,
		BonusPoints:      req.BonusPoints,
		AssignmentID:     req.AssignmentID,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// ownedTask loads the task from the path id and checks it belongs to the
// caller's family. Writes the error response itself when it returns false.
func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return nil, false
	}
	if task == nil || task.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return task, true
}
