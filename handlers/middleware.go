package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"nationportal/config"
	"nationportal/session"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	SessionKey   ContextKey = "session"
	CSRFTokenKey ContextKey = "csrfToken"
)

const cspTemplate = "default-src 'self'; img-src 'self' https: data:%s; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

// SessionFrom returns the session attached by SessionMiddleware, or nil.
func SessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(SessionKey).(*session.Session)
	return sess
}

// SessionMiddleware attaches the caller's portal session, starting a new one
// when the cookie is missing or its session has expired.
func SessionMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(config.SessionCookieName); err == nil && cookie.Value != "" {
				sess, _ = app.Sessions().Get(cookie.Value)
			}
			if sess == nil {
				sess = app.Sessions().Create()
				http.SetCookie(w, &http.Cookie{
					Name:     config.SessionCookieName,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LimitBody caps the size of request bodies.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
)

// csrfTokenFor returns the caller's CSRF token, issuing a fresh cookie when
// the request carries none.
func csrfTokenFor(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// submittedCSRFToken prefers the header over the form field.
func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token
	}
	return r.FormValue(csrfFormField)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CSRFMiddleware rejects state-changing requests whose token does not match
// the csrf_token cookie. The token is accepted from the X-CSRF-Token header or
// the csrf_token form field. Rejections answer JSON so the page script can
// show the message.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfTokenFor(w, r)

		if !isSafeMethod(r.Method) {
			if subtle.ConstantTimeCompare([]byte(submittedCSRFToken(r)), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(csrfRejection))
				return
			}
		}

		ctx := context.WithValue(r.Context(), CSRFTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

const csrfRejection = `{"error":"보안 토큰이 만료되었습니다. 페이지를 새로고침하세요."}`

// NewSecurityHeadersMiddleware sets browser security headers. imageOrigin, when
// set, is added to the allowed image sources so emblems in object storage load.
func NewSecurityHeadersMiddleware(imageOrigin string) func(http.Handler) http.Handler {
	extra := ""
	if imageOrigin != "" {
		extra = " " + imageOrigin
	}
	csp := fmt.Sprintf(cspTemplate, extra)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// NewStructuredLogger logs one line per request through slog.
func NewStructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("Request handled",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
