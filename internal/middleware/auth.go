package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName — имя cookie с JWT.
const CookieName = "auth_token"

type ctxKey string

const userIDKey ctxKey = "user_id"

var tokenTTL atomic.Int64

func init() {
	tokenTTL.Store(int64(24 * time.Hour))
}

// SetTokenTTL задаёт срок жизни выдаваемых токенов.
func SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		tokenTTL.Store(int64(ttl))
	}
}

// NewToken подписывает JWT с user_id в subject.
func NewToken(userID, secret string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(tokenTTL.Load()))),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия токена и возвращает user_id.
func ParseToken(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// SetLoginCookie выписывает токен и кладёт его в cookie ответа. Возвращает токен.
func SetLoginCookie(w http.ResponseWriter, userID, secret string) (string, error) {
	token, err := NewToken(userID, secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(tokenTTL.Load())),
	})
	return token, nil
}

// ClearLoginCookie удаляет cookie с токеном.
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// WithAuth извлекает user_id из cookie или заголовка Authorization: Bearer.
// Запросы без валидного токена проходят дальше анонимными.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := ParseToken(token, secret)
			if err != nil {
				if logger != nil {
					logger.Debugw("auth: invalid token", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// WithUserID кладёт user_id в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext возвращает user_id аутентифицированного пользователя.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
