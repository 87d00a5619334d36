package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sushihentaime/quill/internal/common"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		app.logger.Info("request from", slog.String("method", method), slog.String("uri", uri), slog.String("remote_addr", ip), slog.String("proto", proto))

		next.ServeHTTP(w, r)
	})
}

// rateLimit keys requests by client IP. Limiter errors are logged and the
// request goes through.
func (app *application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := app.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			app.logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
		}

		if !allowed {
			common.RateLimitedTotal.Inc()
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractTokenFromHeader returns "" unless the header is "Bearer <token>".
func (app *application) extractTokenFromHeader(authHeader string) string {
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return ""
	}

	return headerParts[1]
}

func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		// a bad token leaves the request anonymous; requireAuthUser rejects it
		// on protected routes only
		token := app.extractTokenFromHeader(authHeader)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := app.authService.Issuer().Verify(token)
		if err != nil {
			app.logger.Debug("ignoring invalid bearer token", slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}

		r = app.contextSetSubject(r, subject)
		next.ServeHTTP(w, r)
	})
}

func (app *application) requireAuthUser(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.contextGetSubject(r) == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// routeLabel collapses path parameters so the label set stays bounded.
func routeLabel(path string) string {
	switch {
	case path == "/health", path == "/metrics", path == "/users", path == "/blogs",
		path == "/auth/login", path == "/user/current":
		return path
	case strings.HasPrefix(path, "/users/") && !strings.Contains(path[len("/users/"):], "/"):
		return "/users/:id"
	case strings.HasPrefix(path, "/blogs/") && !strings.Contains(path[len("/blogs/"):], "/"):
		return "/blogs/:slug"
	default:
		return "other"
	}
}

func (app *application) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routeLabel(r.URL.Path)
		common.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		common.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
