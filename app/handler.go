package main

import (
	"net/http"

	"github.com/sushihentaime/quill/internal/authservice"
	"github.com/sushihentaime/quill/internal/blogservice"
	"github.com/sushihentaime/quill/internal/userservice"
)

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.userService.ListUsers(r.Context(), userservice.ListUsersQuery{Limit: limit, Offset: offset})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, users, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	user, err := app.userService.GetUser(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.CreateUser(r.Context(), input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler serves both PUT and PATCH; absent fields are left as they are.
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	var input userservice.UpdateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.UpdateUser(r.Context(), id, input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	err := app.userService.DeleteUser(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input authservice.LoginRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.authService.Login(r.Context(), input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, result, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.authService.CurrentUser(r.Context(), app.contextGetSubject(r))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	page, err := app.readIntQuery(qs, "page")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	perPage, err := app.readIntQuery(qs, "per_page")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	query := blogservice.ListPostsQuery{Page: page, PerPage: perPage}

	// ?status= with no value lists every status
	if qs.Has("status") {
		status := qs.Get("status")
		query.Status = &status
	}

	posts, err := app.blogService.ListPosts(r.Context(), query)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, posts, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readStringParam(r, "slug")

	post, err := app.blogService.GetPostBySlug(r.Context(), slug, clientIP(r))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.blogService.CreatePost(r.Context(), app.contextGetSubject(r), input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
