package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/williamwmy/fantastic-task/internal/auth"
	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/notify"
	"github.com/williamwmy/fantastic-task/internal/store"
)

type PushHandler struct {
	push   *store.PushStore
	pusher *notify.Pusher
	logger *slog.Logger
}

func NewPushHandler(push *store.PushStore, pusher *notify.Pusher, logger *slog.Logger) *PushHandler {
	return &PushHandler{push: push, pusher: pusher, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	sub, err := h.push.Subscribe(auth.MemberID(r.Context()), req.Endpoint, req.P256dh, req.Auth)
	if err != nil {
		h.logger.Error("save push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.push.ListByMember(auth.MemberID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	// Only the owner may drop a subscription.
	subs, err := h.push.ListByMember(auth.MemberID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	for _, sub := range subs {
		if sub.ID == id {
			if err := h.push.Delete(id); err != nil {
				h.logger.Error("delete push subscription", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to delete subscription")
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "subscription not found")
}

func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.pusher.VAPIDPublicKey()})
}
