package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

// SetLogger задаёт логгер для мидлварей.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

const requestIDKey ctxKey = "tid"

// GetRequestID возвращает идентификатор запроса (tid), назначенный WithLogging.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	if r.data.status == 0 {
		r.data.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.data.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.data.status = statusCode
}

// WithLogging назначает запросу tid и логирует метод, путь, статус и длительность.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tid := uuid.NewString()
		w.Header().Set("X-Request-ID", tid)

		data := &responseData{}
		lw := &loggingResponseWriter{ResponseWriter: w, data: data}
		next.ServeHTTP(lw, r.WithContext(context.WithValue(r.Context(), requestIDKey, tid)))

		if logger == nil {
			return
		}
		if data.status == 0 {
			data.status = http.StatusOK
		}
		logger.Infow("request",
			"tid", tid,
			"method", r.Method,
			"uri", r.RequestURI,
			"status", data.status,
			"size", data.size,
			"duration", time.Since(start),
		)
	})
}
