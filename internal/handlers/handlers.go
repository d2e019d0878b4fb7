package handlers

import (
	"Sidekick/internal/config"
	"Sidekick/internal/middleware"
	"Sidekick/internal/service"
	"Sidekick/internal/stats"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services — зависимости HTTP-слоя.
type Services struct {
	Users     *service.UserService
	Documents *service.DocumentService
	Settings  *service.SettingsService

	Stats   stats.Collector
	Metrics http.Handler // обработчик /metrics; nil — маршрут не регистрируется
	// PingDB проверяет доступность БД для /health.
	PingDB func() error
	// Snapshot возвращает счётчики событий для /health.
	Snapshot func() map[string]float64
	Version  string
	Started  time.Time
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	if svc.Stats == nil {
		svc.Stats = stats.Nop{}
	}
	if svc.Started.IsZero() {
		svc.Started = time.Now()
	}

	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	healthHandler := NewHealthHandler(svc, logger)
	userHandler := NewUserHandler(svc.Users, svc.Settings, logger, config)
	docHandler := NewDocumentHandler(svc.Documents, svc.Users, logger)
	settingsHandler := NewSettingsHandler(svc.Settings, svc.Users, logger)

	r.Get("/ping", healthHandler.Ping)
	r.Get("/health", healthHandler.Health)
	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svc.Metrics)
	}

	// User routes
	r.Post("/create_account", userHandler.CreateAccount)
	r.Post("/login", userHandler.Login)
	r.Post("/logout", userHandler.Logout)
	r.Post("/change_password", userHandler.ChangePassword)
	r.Post("/reset_password", userHandler.ResetPassword)
	r.Post("/delete_user", userHandler.DeleteUser)
	r.Post("/rename_user_id", userHandler.RenameUser)
	r.Get("/users", userHandler.ListUsers)

	// Settings routes
	r.Get("/settings/{name}", settingsHandler.GetSettings)
	r.Put("/settings/{name}", settingsHandler.SaveSettings)
	r.Get("/system_settings/{name}", settingsHandler.GetSystemSettings)
	r.Put("/system_settings/{name}", settingsHandler.SaveSystemSettings)

	// Documents
	r.Post("/feedback", docHandler.CreateFeedback)
	r.Get("/feedback", docHandler.ListFeedback)
	r.Get("/tags", docHandler.UserTags)
	r.Route("/docdb/{type}/documents", func(r chi.Router) {
		r.Get("/", docHandler.List)
		r.Post("/", docHandler.Create)
		r.Get("/{id}", docHandler.Get)
		r.Put("/{id}", docHandler.Update)
		r.Delete("/{id}", docHandler.Delete)
		r.Put("/{id}/rename", docHandler.Rename)
		r.Put("/{id}/move", docHandler.Move)
		r.Put("/{id}/visibility", docHandler.SetVisibility)
	})

	return &Handler{Router: r}
}

// Result — стандартный ответ операций над пользователями.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	User        any    `json:"user,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError сопоставляет ошибку сервиса со статусом. Текст внутренних ошибок клиенту не отдаётся.
// Ошибки, понятные пользователю (занятый id), отдаются с 200 и success=false.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorw(op+": service error", "tid", middleware.GetRequestID(r.Context()), "error", err)
	} else {
		logger.Infow(op+": rejected", "tid", middleware.GetRequestID(r.Context()), "status", status, "error", err)
	}
	writeJSON(w, status, Result{Success: false, Message: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.InvalidLoginMessage
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnknownUser):
		return http.StatusBadRequest, "unknown user"
	case errors.Is(err, service.ErrOIDCUser):
		return http.StatusBadRequest, service.ErrOIDCUser.Error()
	case errors.Is(err, service.ErrDuplicateUser):
		return http.StatusOK, duplicateUserMessage
	case errors.Is(err, service.ErrReservedUserID):
		return http.StatusOK, reservedUserMessage
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

const (
	duplicateUserMessage = "A user with that ID already exists."
	reservedUserMessage  = "Invalid user_id: cannot contain 'sidekick'"
)

// requireUser возвращает user_id из контекста или отвечает 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Result{Success: false, Message: "unauthorized"})
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warnw(op+": invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, Result{Success: false, Message: "invalid request"})
		return false
	}
	return true
}
