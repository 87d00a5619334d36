package main

import (
	"context"
	"net/http"
)

type contextKey string

const subjectContextKey = contextKey("subject")

// contextSetSubject stores the verified token subject for the rest of the request.
func (app *application) contextSetSubject(r *http.Request, subject string) *http.Request {
	ctx := context.WithValue(r.Context(), subjectContextKey, subject)
	return r.WithContext(ctx)
}

// contextGetSubject returns "" for anonymous requests.
func (app *application) contextGetSubject(r *http.Request) string {
	subject, ok := r.Context().Value(subjectContextKey).(string)
	if !ok {
		return ""
	}
	return subject
}
