package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/tofuwabohu/clubist/internal/blogservice"
	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/common"
)

// viewSeenTTL is how long a viewer's view of a blog is remembered for
// de-duplication. Repeat views inside the window do not move the counter.
const viewSeenTTL = 30 * time.Minute

// serviceErrorResponse translates the error taxonomy shared by the
// services into HTTP responses. Handlers call it for anything they do not
// map themselves.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationError common.ValidationError

	switch {
	case errors.As(err, &validationError):
		app.failedValidationErrorResponse(w, r, validationError.Errors)
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	u := app.getUserContext(r)

	blog, err := app.blogs.CreateBlog(r.Context(), &blogservice.CreateBlogRequest{
		Title:   input.Title,
		Content: input.Content,
		Author: blogservice.Author{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		},
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	blog, err := app.blogs.GetBlogByID(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	stats := app.stats.GetStats(r.Context(), id)

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog, "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	u := app.getUserContext(r)

	err = app.blogs.UpdateBlog(r.Context(), id, u.ID, input.Title, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog updated successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	u := app.getUserContext(r)

	err = app.blogs.DeleteBlog(r.Context(), id, u.ID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getAllBlogsHandler lists blogs, optionally filtered by a title search via
// the q query parameter.
func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := app.readQueryInt(r, "limit", 10)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	offset, err := app.readQueryInt(r, "offset", 0)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var blogs []blogservice.Blog

	if q := r.URL.Query().Get("q"); q != "" {
		blogs, err = app.blogs.GetBlogsByTitle(r.Context(), q, &limit, &offset)
	} else {
		blogs, err = app.blogs.GetBlogs(r.Context(), &limit, &offset)
	}
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogsByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorId, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	blogs, err := app.blogs.GetBlogsByAuthor(r.Context(), authorId)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	stats := app.stats.GetStats(r.Context(), id)

	err = app.writeJSON(w, http.StatusOK, envelope{"stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) reconcileStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	stats, err := app.stats.Reconcile(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) incrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	seenKey := common.CacheKeyViewSeen(id, app.viewerKey(r))
	if _, found := app.cache.Get(seenKey); found {
		err = app.writeJSON(w, http.StatusOK, envelope{"message": "view already recorded"}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.stats.IncrementViews(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.cache.Set(seenKey, struct{}{}, viewSeenTTL)

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "view recorded"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	u := app.getUserContext(r)

	liked, err := app.likes.IsLiked(r.Context(), id, u.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"liked": liked}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	u := app.getUserContext(r)

	liked, err := app.likes.Toggle(r.Context(), id, u.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	stats := app.stats.GetStats(r.Context(), id)

	err = app.writeJSON(w, http.StatusOK, envelope{"liked": liked, "likes": stats.Likes}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	comments, err := app.comments.Load(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	blogId, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input struct {
		Content  string `json:"content"`
		ParentID string `json:"parent_id"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	u := app.getUserContext(r)

	comment, err := app.comments.Create(r.Context(), &commentservice.CreateCommentRequest{
		BlogID:   blogId,
		UserID:   u.ID,
		Username: u.Username,
		Content:  input.Content,
		ParentID: input.ParentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrParentNotFound), errors.Is(err, commentservice.ErrNestedReply):
			app.badRequestErrorResponse(w, r, err)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentId, err := app.readIDParam(r, "commentid")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input struct {
		Content string `json:"content"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	u := app.getUserContext(r)

	err = app.comments.UpdateContent(r.Context(), commentId, u.ID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment updated successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	blogId, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	commentId, err := app.readIDParam(r, "commentid")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	u := app.getUserContext(r)

	err = app.comments.Delete(r.Context(), commentId, blogId, u.ID)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toggleCommentLikeHandler(w http.ResponseWriter, r *http.Request) {
	commentId, err := app.readIDParam(r, "commentid")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	u := app.getUserContext(r)

	liked, likes, err := app.comments.ToggleLike(r.Context(), commentId, u.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"liked": liked, "likes": likes}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
