package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.notFoundErrorResponse(w, r)
	})

	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.methodNotAllowedErrorResponse(w, r)
	})

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id/blogs", app.getBlogsByAuthorHandler)

	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id/stats", app.getStatsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/stats/reconcile", app.requireAuthUser(app.reconcileStatsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/views", app.incrementViewsHandler)

	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id/like", app.requireAuthUser(app.getLikeHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/like", app.requireAuthUser(app.toggleLikeHandler))

	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id/comments", app.getCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id/comments/:commentid", app.requireAuthUser(app.updateCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id/comments/:commentid", app.requireAuthUser(app.deleteCommentHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/comments/:commentid/like", app.requireAuthUser(app.toggleCommentLikeHandler))

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
