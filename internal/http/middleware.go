package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKeySessionID struct{}
type ctxKeyCustomerID struct{}
type ctxKeyRequestID struct{}

const sessionCookie = "lumiere_session"

// SessionMiddleware resolves the cart session id: the X-Session-ID header
// wins (API clients), then the cookie, otherwise a new session is minted
// and set on the response.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   60 * 60 * 48,
				HttpOnly: true,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySessionID{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MockAuthMiddleware simulates JWT authentication (replace with real JWT validation)
func MockAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// In production: validate JWT token from Authorization header and
		// extract the customer id from token claims. For now trust the
		// header; an absent header means a guest session.
		customerID := r.Header.Get("X-Customer-ID")

		ctx := context.WithValue(r.Context(), ctxKeyCustomerID{}, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(ctxKeySessionID{}).(string); ok {
		return sessionID
	}
	return ""
}

func getCustomerID(ctx context.Context) string {
	if customerID, ok := ctx.Value(ctxKeyCustomerID{}).(string); ok {
		return customerID
	}
	return ""
}
