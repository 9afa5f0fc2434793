package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/williamwmy/fantastic-task/internal/handler"
	"github.com/williamwmy/fantastic-task/internal/middleware"
	"github.com/williamwmy/fantastic-task/internal/notify"
	"github.com/williamwmy/fantastic-task/internal/points"
	"github.com/williamwmy/fantastic-task/internal/store"
	ws "github.com/williamwmy/fantastic-task/internal/websocket"
)

// Config carries the server's wiring options.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	engine       *points.Engine
	authH        *handler.AuthHandler
	taskH        *handler.TaskHandler
	completionH  *handler.CompletionHandler
	assignmentH  *handler.AssignmentHandler
	memberH      *handler.MemberHandler
	familyH      *handler.FamilyHandler
	pushH        *handler.PushHandler
	sessionStore *store.SessionStore
	memberStore  *store.MemberStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	familyStore := store.NewFamilyStore(db)
	memberStore := store.NewMemberStore(db)
	taskStore := store.NewTaskStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	completionStore := store.NewCompletionStore(db)
	ledgerStore := store.NewLedgerStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	engine := points.NewEngine(familyStore, memberStore, taskStore, assignmentStore, completionStore, ledgerStore, logger.With("component", "points"))

	// Every balance mutation nudges the member's family over the socket.
	engine.SetNotify(func(memberID int64) {
		member, err := memberStore.GetByID(memberID)
		if err != nil || member == nil {
			return
		}
		hub.Broadcast(member.FamilyID, ws.Event{Event: ws.EventPointsChanged, MemberID: memberID})
	})

	// Push notifications are optional; without VAPID keys the hooks and
	// endpoints stay dark.
	var pusher *notify.Pusher
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pusher = notify.NewPusher(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
		pushH = handler.NewPushHandler(pushStore, pusher, logger.With("component", "push"))

		reviewer := notify.NewReviewNotifier(pusher, memberStore, taskStore, pushStore, logger.With("component", "notify"))
		engine.SetPendingHook(reviewer.CompletionPending)
	}

	return &Server{
		db:           db,
		hub:          hub,
		engine:       engine,
		authH:        handler.NewAuthHandler(memberStore, sessionStore, logger.With("component", "auth")),
		taskH:        handler.NewTaskHandler(taskStore, engine, hub, logger.With("component", "task")),
		completionH:  handler.NewCompletionHandler(completionStore, memberStore, engine, logger.With("component", "completion")),
		assignmentH:  handler.NewAssignmentHandler(assignmentStore, taskStore, memberStore, hub, logger.With("component", "assignment")),
		memberH:      handler.NewMemberHandler(memberStore, ledgerStore, engine, hub, logger.With("component", "member")),
		familyH:      handler.NewFamilyHandler(familyStore, logger.With("component", "family")),
		pushH:        pushH,
		sessionStore: sessionStore,
		memberStore:  memberStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// Engine returns the points engine, mainly so callers can attach hooks.
func (s *Server) Engine() *points.Engine {
	return s.engine
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.memberStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)

	// Real-time sync
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)

	// Assignment API routes
	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("GET /api/assignments", s.assignmentH.List)
	mux.HandleFunc("DELETE /api/assignments/{id}", s.assignmentH.Delete)

	// Completion API routes
	mux.HandleFunc("DELETE /api/completions/{id}", s.completionH.Undo)
	mux.HandleFunc("GET /api/completions/pending", s.completionH.Pending)
	mux.HandleFunc("POST /api/completions/{id}/verify", s.completionH.Verify)
	mux.HandleFunc("GET /api/stats", s.completionH.Stats)

	// Member API routes
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)
	mux.Handle("POST /api/members", middleware.RequireAdmin(http.HandlerFunc(s.memberH.Create)))
	mux.Handle("PUT /api/members/{id}", middleware.RequireAdmin(http.HandlerFunc(s.memberH.Update)))
	mux.Handle("DELETE /api/members/{id}", middleware.RequireAdmin(http.HandlerFunc(s.memberH.Delete)))
	mux.HandleFunc("POST /api/members/{id}/pin", s.memberH.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", s.memberH.ClearPIN)
	mux.HandleFunc("GET /api/members/{id}/transactions", s.memberH.Transactions)
	mux.Handle("POST /api/members/{id}/reconcile", middleware.RequireAdmin(http.HandlerFunc(s.memberH.Reconcile)))
	mux.HandleFunc("GET /api/leaderboard", s.memberH.Leaderboard)

	// Family API routes
	mux.HandleFunc("GET /api/family", s.familyH.Get)
	mux.Handle("PUT /api/family", middleware.RequireAdmin(http.HandlerFunc(s.familyH.Update)))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}
}
