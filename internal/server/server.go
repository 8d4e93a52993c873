package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/email"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/gamification"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/handler"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/middleware"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/notify"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/push"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/weather"
	ws "github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

// Config carries the optional integrations. Zero values disable the
// corresponding feature rather than failing startup.
type Config struct {
	Email           *email.Client
	Tokens          *auth.TokenIssuer
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
	Weather         weather.Config
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	engine         *gamification.Engine
	authH          *handler.AuthHandler
	familyH        *handler.FamilyHandler
	choreH         *handler.ChoreHandler
	assignmentH    *handler.AssignmentHandler
	achievementH   *handler.AchievementHandler
	pointsH        *handler.PointsHandler
	rewardH        *handler.RewardHandler
	allowanceH     *handler.AllowanceHandler
	notificationH  *handler.NotificationHandler
	groceryH       *handler.GroceryHandler
	budgetH        *handler.BudgetHandler
	calendarH      *handler.CalendarHandler
	noteH          *handler.NoteHandler
	pushH          *handler.PushHandler
	weatherH       *handler.WeatherHandler
	userStore      *store.UserStore
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	tokens         *auth.TokenIssuer
	rateLimiter    *middleware.RateLimiter
	pushScheduler  *push.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	familyStore := store.NewFamilyStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	choreStore := store.NewChoreStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	achievementStore := store.NewAchievementStore(db)
	pointsStore := store.NewPointsStore(db)
	streakStore := store.NewStreakStore(db)
	rewardStore := store.NewRewardStore(db)
	allowanceStore := store.NewAllowanceStore(db)
	notificationStore := store.NewNotificationStore(db)
	groceryStore := store.NewGroceryStore(db)
	budgetStore := store.NewBudgetStore(db)
	eventStore := store.NewEventStore(db)
	noteStore := store.NewNoteStore(db)
	pushStore := store.NewPushStore(db)

	// Push delivery is optional; without VAPID keys, in-app notifications
	// still work.
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
		pushSched = push.NewScheduler(pushSvc, pushStore, eventStore, assignmentStore, logger.With("component", "push_scheduler"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push"))
	}

	notifier := notify.New(notificationStore, pushStore, userStore, pushSvc, logger.With("component", "notify"))

	engine := gamification.New(db, logger)
	engine.SetNotifier(notifier)
	engine.SetBroadcaster(hub)

	return &Server{
		db:             db,
		hub:            hub,
		engine:         engine,
		authH:          handler.NewAuthHandler(userStore, familyStore, sessionStore, magicLinkStore, cfg.Email, cfg.Tokens, logger.With("component", "auth")),
		familyH:        handler.NewFamilyHandler(familyStore, userStore, sessionStore, magicLinkStore, cfg.Email, hub, logger.With("component", "family")),
		choreH:         handler.NewChoreHandler(choreStore, hub, logger.With("component", "chore")),
		assignmentH:    handler.NewAssignmentHandler(engine, assignmentStore, logger.With("component", "assignment")),
		achievementH:   handler.NewAchievementHandler(engine, achievementStore, logger.With("component", "achievement")),
		pointsH:        handler.NewPointsHandler(pointsStore, streakStore, userStore, logger.With("component", "points")),
		rewardH:        handler.NewRewardHandler(rewardStore, userStore, notifier, hub, logger.With("component", "reward")),
		allowanceH:     handler.NewAllowanceHandler(allowanceStore, logger.With("component", "allowance")),
		notificationH:  handler.NewNotificationHandler(notificationStore, logger.With("component", "notification")),
		groceryH:       handler.NewGroceryHandler(groceryStore, userStore, notifier, hub, logger.With("component", "grocery")),
		budgetH:        handler.NewBudgetHandler(budgetStore, logger.With("component", "budget")),
		calendarH:      handler.NewCalendarHandler(eventStore, userStore, hub, logger.With("component", "calendar")),
		noteH:          handler.NewNoteHandler(noteStore, hub, logger.With("component", "note")),
		pushH:          pushH,
		weatherH:       handler.NewWeatherHandler(weather.NewService(cfg.Weather)),
		userStore:      userStore,
		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		tokens:         cfg.Tokens,
		rateLimiter:    middleware.NewRateLimiter(),
		pushScheduler:  pushSched,
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the reminder scheduler, or nil when push is not
// configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /auth/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("POST /auth/register", s.rateLimited(s.authH.Register))
	outerMux.HandleFunc("GET /auth/verify", s.authH.Verify)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.tokens)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	guardian := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireGuardian(h)
	}

	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/auth/token", s.authH.IssueToken)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.userStore, s.logger.With("component", "websocket")))

	// Family and members
	mux.HandleFunc("GET /api/family", s.familyH.Get)
	mux.Handle("PUT /api/family", guardian(s.familyH.Update))
	mux.HandleFunc("GET /api/members", s.familyH.Members)
	mux.Handle("POST /api/members/invite", guardian(s.familyH.Invite))
	mux.Handle("PUT /api/members/{id}", guardian(s.familyH.UpdateMember))
	mux.Handle("DELETE /api/members/{id}", guardian(s.familyH.DeleteMember))
	mux.Handle("POST /api/members/{id}/pin", guardian(s.familyH.SetPIN))
	mux.Handle("DELETE /api/members/{id}/pin", guardian(s.familyH.ClearPIN))
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.familyH.VerifyPIN)
	mux.Handle("PUT /api/members/{id}/gamification", guardian(s.familyH.SetGamification))

	// Chore templates
	mux.Handle("POST /api/chores", guardian(s.choreH.Create))
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.Handle("PUT /api/chores/{id}", guardian(s.choreH.Update))
	mux.Handle("DELETE /api/chores/{id}", guardian(s.choreH.Delete))

	// Assignments; the engine enforces assignee and guardian rules
	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("GET /api/assignments", s.assignmentH.List)
	mux.HandleFunc("GET /api/assignments/mine", s.assignmentH.Mine)
	mux.HandleFunc("GET /api/assignments/{id}", s.assignmentH.Get)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.Complete)
	mux.HandleFunc("POST /api/assignments/{id}/verify", s.assignmentH.Verify)

	// Achievements
	mux.HandleFunc("GET /api/achievements", s.achievementH.Catalog)
	mux.HandleFunc("GET /api/achievements/unlocked", s.achievementH.Unlocked)
	mux.HandleFunc("POST /api/achievements/check", s.achievementH.Check)

	// Points
	mux.HandleFunc("GET /api/members/{id}/points", s.pointsH.Summary)
	mux.HandleFunc("GET /api/members/{id}/points/history", s.pointsH.History)
	mux.HandleFunc("GET /api/leaderboard", s.pointsH.Leaderboard)

	// Rewards
	mux.Handle("POST /api/rewards", guardian(s.rewardH.Create))
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.Handle("PUT /api/rewards/{id}", guardian(s.rewardH.Update))
	mux.Handle("DELETE /api/rewards/{id}", guardian(s.rewardH.Delete))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/redemptions", s.rewardH.Redemptions)

	// Allowances
	mux.HandleFunc("GET /api/allowances", s.allowanceH.List)
	mux.Handle("POST /api/allowances/{id}/pay", guardian(s.allowanceH.MarkPaid))
	mux.Handle("GET /api/allowances/pending-total", guardian(s.allowanceH.PendingTotal))

	// Notifications
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("GET /api/notifications/unread-count", s.notificationH.UnreadCount)

	// Grocery lists
	mux.HandleFunc("POST /api/grocery-lists", s.groceryH.CreateList)
	mux.HandleFunc("GET /api/grocery-lists", s.groceryH.Lists)
	mux.HandleFunc("DELETE /api/grocery-lists/{list_id}", s.groceryH.DeleteList)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/items", s.groceryH.CreateItem)
	mux.HandleFunc("GET /api/grocery-lists/{list_id}/items", s.groceryH.Items)
	mux.HandleFunc("PUT /api/grocery-lists/{list_id}/items/{id}", s.groceryH.UpdateItem)
	mux.HandleFunc("DELETE /api/grocery-lists/{list_id}/items/{id}", s.groceryH.DeleteItem)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/items/{id}/check", s.groceryH.ToggleChecked)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/clear-checked", s.groceryH.ClearChecked)

	// Budget
	mux.Handle("POST /api/budget/categories", guardian(s.budgetH.CreateCategory))
	mux.HandleFunc("GET /api/budget/categories", s.budgetH.Categories)
	mux.Handle("PUT /api/budget/categories/{id}", guardian(s.budgetH.UpdateCategory))
	mux.Handle("DELETE /api/budget/categories/{id}", guardian(s.budgetH.DeleteCategory))
	mux.HandleFunc("POST /api/budget/expenses", s.budgetH.CreateExpense)
	mux.HandleFunc("GET /api/budget/expenses", s.budgetH.Expenses)
	mux.Handle("DELETE /api/budget/expenses/{id}", guardian(s.budgetH.DeleteExpense))
	mux.HandleFunc("GET /api/budget/summary", s.budgetH.Summary)

	// Calendar
	mux.HandleFunc("POST /api/events", s.calendarH.Create)
	mux.HandleFunc("GET /api/events", s.calendarH.List)
	mux.HandleFunc("GET /api/events/{id}", s.calendarH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.calendarH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.calendarH.Delete)

	// Notes
	mux.HandleFunc("POST /api/notes", s.noteH.Create)
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("PUT /api/notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)
	mux.HandleFunc("POST /api/notes/{id}/pin", s.noteH.TogglePinned)

	// Dashboard weather
	mux.HandleFunc("GET /api/weather", s.weatherH.Forecast)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("GET /api/push/preferences", s.pushH.Preferences)
		mux.HandleFunc("PUT /api/push/preferences", s.pushH.UpdatePreference)
		mux.HandleFunc("POST /api/push/test", s.pushH.Test)
	}
}
