package handlers

import (
	"Sidekick/internal/config"
	"Sidekick/internal/middleware"
	"Sidekick/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — учётные записи: регистрация, вход, смена пароля, удаление, переименование.
type UserHandler struct {
	UserService     *service.UserService
	SettingsService *service.SettingsService
	Logger          *zap.SugaredLogger
	Config          *config.Config
}

func NewUserHandler(userService *service.UserService, settings *service.SettingsService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, SettingsService: settings, Logger: logger, Config: cfg}
}

type createAccountRequest struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Password   string          `json:"password"`
	Properties json.RawMessage `json:"properties"`
}

type credentialsRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	UserID          string `json:"user_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type resetPasswordRequest struct {
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password"`
}

type renameUserRequest struct {
	UserID    string `json:"user_id"`
	NewUserID string `json:"new_user_id"`
	Name      string `json:"name"`
}

// CreateAccount регистрирует пользователя и сразу выдаёт токен.
func (h *UserHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, h.Logger, "CreateAccount", &req) {
		return
	}
	if req.UserID == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Result{Success: false, Message: "user_id and password are required"})
		return
	}

	user, err := h.UserService.Register(r.Context(), service.CreateUserInput{
		ID:         req.UserID,
		Name:       req.Name,
		Password:   req.Password,
		Properties: req.Properties,
	})
	if err != nil {
		writeError(w, h.Logger, r, "CreateAccount", err)
		return
	}

	token, err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret)
	if err != nil {
		writeError(w, h.Logger, r, "CreateAccount", err)
		return
	}
	h.Logger.Infow("account created", "user_id", user.ID)
	writeJSON(w, http.StatusOK, Result{Success: true, User: user.View(), AccessToken: token})
}

// Login проверяет пароль, сверяет настройки пользователя и выдаёт токен.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, h.Logger, "Login", &req) {
		return
	}

	user, err := h.UserService.Login(r.Context(), req.UserID, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.Logger.Infow("invalid login attempt", "user_id", req.UserID, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusOK, Result{Success: false, Message: service.InvalidLoginMessage})
		return
	}
	if err != nil {
		writeError(w, h.Logger, r, "Login", err)
		return
	}

	if err := h.SettingsService.UpdateDefaultSettings(r.Context(), user.ID); err != nil {
		writeError(w, h.Logger, r, "Login", err)
		return
	}

	token, err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret)
	if err != nil {
		writeError(w, h.Logger, r, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, User: user.View(), AccessToken: token})
}

// Logout удаляет cookie с токеном.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// ChangePassword меняет пароль текущего пользователя.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actingID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !decodeBody(w, r, h.Logger, "ChangePassword", &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = actingID
	}
	if req.UserID != actingID {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Users can only change their own password"})
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), actingID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.Logger, r, "ChangePassword", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// ResetPassword — смена чужого пароля администратором.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actingID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.UserService.IsAdmin(r.Context(), actingID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can reset passwords"})
		return
	}
	var req resetPasswordRequest
	if !decodeBody(w, r, h.Logger, "ResetPassword", &req) {
		return
	}

	if err := h.UserService.ResetPassword(r.Context(), actingID, req.UserID, req.NewPassword); err != nil {
		writeError(w, h.Logger, r, "ResetPassword", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// DeleteUser удаляет свою учётную запись (или чужую — администратором) после
// подтверждения паролем действующего пользователя.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actingID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req credentialsRequest
	if !decodeBody(w, r, h.Logger, "DeleteUser", &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = actingID
	}
	if req.UserID != actingID && !h.UserService.IsAdmin(r.Context(), actingID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can delete other users"})
		return
	}
	if _, err := h.UserService.Login(r.Context(), actingID, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusOK, Result{Success: false, Message: "Invalid password"})
			return
		}
		writeError(w, h.Logger, r, "DeleteUser", err)
		return
	}

	deleted, err := h.UserService.DeleteUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, h.Logger, r, "DeleteUser", err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "User not found"})
		return
	}
	if req.UserID == actingID {
		middleware.ClearLoginCookie(w)
	}
	h.Logger.Infow("user deleted", "user_id", req.UserID, "acting_user_id", actingID)
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// RenameUser переименовывает учётную запись. Свою — любой пользователь, чужую — администратор.
func (h *UserHandler) RenameUser(w http.ResponseWriter, r *http.Request) {
	actingID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req renameUserRequest
	if !decodeBody(w, r, h.Logger, "RenameUser", &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = actingID
	}
	if req.UserID != actingID && !h.UserService.IsAdmin(r.Context(), actingID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can rename other users"})
		return
	}
	if err := h.UserService.RenameUser(r.Context(), req.UserID, req.NewUserID, req.Name); err != nil {
		writeError(w, h.Logger, r, "RenameUser", err)
		return
	}

	res := Result{Success: true}
	if req.UserID == actingID {
		// старый токен указывает на удалённый id
		token, err := middleware.SetLoginCookie(w, req.NewUserID, h.Config.AuthSecret)
		if err != nil {
			writeError(w, h.Logger, r, "RenameUser", err)
			return
		}
		res.AccessToken = token
	}
	writeJSON(w, http.StatusOK, res)
}

// ListUsers — список пользователей для администратора.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actingID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.UserService.IsAdmin(r.Context(), actingID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can view users."})
		return
	}
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.Logger, r, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
