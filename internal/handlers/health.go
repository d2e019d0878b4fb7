package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// HealthHandler — /ping и /health.
type HealthHandler struct {
	svc    Services
	Logger *zap.SugaredLogger
}

func NewHealthHandler(svc Services, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{svc: svc, Logger: logger}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	h.svc.Stats.Inc("ping")
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "sidekick-server is up and running.",
		"status":    "OK",
		"version":   h.svc.Version,
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
		"hostname":  hostname,
	})
}

// Health — состояние сервера и БД, время работы и счётчики событий.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	uptime := time.Since(h.svc.Started).Truncate(time.Second)

	database := "UP"
	status := http.StatusOK
	if h.svc.PingDB != nil {
		if err := h.svc.PingDB(); err != nil {
			h.Logger.Errorw("health: database unavailable", "error", err)
			database = "DOWN"
			status = http.StatusServiceUnavailable
		}
	}
	counters := map[string]float64{}
	if h.svc.Snapshot != nil {
		counters = h.svc.Snapshot()
	}

	writeJSON(w, status, map[string]any{
		"success":         status == http.StatusOK,
		"status":          map[bool]string{true: "UP", false: "DOWN"}[status == http.StatusOK],
		"version":         h.svc.Version,
		"timestamp":       time.Now().Format(time.RFC3339),
		"hostname":        hostname,
		"serverStartTime": h.svc.Started.Format("2006-01-02 15:04:05"),
		"serverUpTime":    fmt.Sprint(uptime),
		"stats":           counters,
		"dependencies": map[string]string{
			"database": database,
		},
	})
}
