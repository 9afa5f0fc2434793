package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/williamwmy/fantastic-task/internal/middleware"
	"github.com/williamwmy/fantastic-task/internal/store"
)

type AuthHandler struct {
	members  *store.MemberStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(members *store.MemberStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{members: members, sessions: sessions, logger: logger}
}

type loginRequest struct {
	FamilyID int64  `json:"family_id"`
	Nickname string `json:"nickname"`
	PIN      string `json:"pin"`
}

// Login exchanges a nickname and PIN for a session cookie. Members without
// a PIN log in with an empty one; useful for small children.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}
	if req.FamilyID == 0 {
		req.FamilyID = 1
	}

	member, err := h.members.GetByNickname(req.FamilyID, req.Nickname)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		// Same response as a wrong PIN to avoid member enumeration.
		writeError(w, http.StatusUnauthorized, "incorrect nickname or PIN")
		return
	}

	if member.HasPIN {
		hash, err := h.members.GetPINHash(member.ID)
		if err != nil {
			h.logger.Error("login pin hash", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
			writeError(w, http.StatusUnauthorized, "incorrect nickname or PIN")
			return
		}
	} else if req.PIN != "" {
		writeError(w, http.StatusUnauthorized, "incorrect nickname or PIN")
		return
	}

	sess, err := h.sessions.Create(member.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, member)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
