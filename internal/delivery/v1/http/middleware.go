package http

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"

	sessionCookieTTL = 30 * 24 * time.Hour
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type sessionKey struct{}

// SessionMiddleware определяет сессию корзины по заголовку X-Session-ID или cookie session_id.
// Запрос без сессии получает новую, её ID возвращается в заголовке и cookie.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				sessionID = c.Value
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(sessionCookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if !sessionIDPattern.MatchString(sessionID) {
			WriteError(w, e.ErrMissingSessionID)
			return
		}

		w.Header().Set(SessionHeader, sessionID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sessionID)))
	})
}

// SessionIDFromCtx возвращает ID сессии, положенный SessionMiddleware.
func SessionIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// RequestLogger пишет по строке на запрос через общий логгер.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debugf("%s %s -> %d (%v) request_id: %s",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
