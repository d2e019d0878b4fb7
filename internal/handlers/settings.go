package handlers

import (
	"Sidekick/internal/service"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsHandler — настройки пользователя и системные настройки по имени.
type SettingsHandler struct {
	SettingsService *service.SettingsService
	UserService     *service.UserService
	Logger          *zap.SugaredLogger
}

func NewSettingsHandler(settings *service.SettingsService, users *service.UserService, logger *zap.SugaredLogger) *SettingsHandler {
	return &SettingsHandler{SettingsService: settings, UserService: users, Logger: logger}
}

// GetSettings отдаёт настройки; при отсутствии документ создаётся из фикстуры.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	content, err := h.SettingsService.GetSettings(r.Context(), userID, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, h.Logger, r, "GetSettings", err)
		return
	}
	writeRaw(w, content)
}

func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r, h.Logger, "SaveSettings")
	if !ok {
		return
	}
	if err := h.SettingsService.SaveSettings(r.Context(), userID, chi.URLParam(r, "name"), body); err != nil {
		writeError(w, h.Logger, r, "SaveSettings", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// GetSystemSettings доступен без аутентификации (нужен, например, экрану входа).
func (h *SettingsHandler) GetSystemSettings(w http.ResponseWriter, r *http.Request) {
	content, err := h.SettingsService.GetSystemSettings(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, h.Logger, r, "GetSystemSettings", err)
		return
	}
	writeRaw(w, content)
}

func (h *SettingsHandler) SaveSystemSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.UserService.IsAdmin(r.Context(), userID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can save system settings."})
		return
	}
	body, ok := readBody(w, r, h.Logger, "SaveSystemSettings")
	if !ok {
		return
	}
	if err := h.SettingsService.SaveSystemSettings(r.Context(), chi.URLParam(r, "name"), body); err != nil {
		writeError(w, h.Logger, r, "SaveSystemSettings", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

const maxSettingsBody = 1 << 20

func readBody(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	if err != nil || !json.Valid(body) {
		logger.Warnw(op+": invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, Result{Success: false, Message: "invalid request"})
		return nil, false
	}
	return body, true
}

func writeRaw(w http.ResponseWriter, content json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
