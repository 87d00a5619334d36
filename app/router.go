package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/health", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// user service
	router.HandlerFunc(http.MethodGet, "/users", app.listUsersHandler)
	router.HandlerFunc(http.MethodPost, "/users", app.createUserHandler)
	router.HandlerFunc(http.MethodGet, "/users/:id", app.getUserHandler)
	router.HandlerFunc(http.MethodPut, "/users/:id", app.updateUserHandler)
	router.HandlerFunc(http.MethodPatch, "/users/:id", app.updateUserHandler)
	router.HandlerFunc(http.MethodDelete, "/users/:id", app.deleteUserHandler)

	// auth
	router.HandlerFunc(http.MethodPost, "/auth/login", app.loginHandler)
	router.HandlerFunc(http.MethodGet, "/user/current", app.requireAuthUser(app.currentUserHandler))

	// blog service
	router.HandlerFunc(http.MethodGet, "/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/blogs/:slug", app.getBlogHandler)

	return app.recoverPanic(app.metrics(app.logRequest(app.rateLimit(app.authenticate(router)))))
}
