package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogs-service/database"
	"github.com/rpupo63/blogs-service/errs"
	"github.com/rpupo63/blogs-service/models"
)

const blogIDParam = "blogID"

// sessionProvider hands out request-scoped database sessions.
type sessionProvider interface {
	WithSession(ctx context.Context, fn func(database.Session) error) error
}

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	sessions  sessionProvider
	validate  *validator.Validate
}

func newBlogHandler(sessions sessionProvider) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
		validate:  newValidator(),
	}
}

type createBlogRequest struct {
	Title *string `json:"title" validate:"required"`
	Body  *string `json:"body" validate:"required"`
}

// createBlog inserts a blog and returns it with its assigned id
// @Summary Create blog
// @Accept json
// @Produce json
// @Param blog body createBlogRequest true "Blog title and body"
// @Success 201 {object} models.Blog
// @Failure 422 {object} ErrorResponse
// @Router /blogs [post]
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBlogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.validate.Struct(req); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		blog := &models.Blog{Title: *req.Title, Body: *req.Body}
		err := h.sessions.WithSession(r.Context(), func(s database.Session) error {
			return s.BlogRepo().Add(blog)
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog", err))
			return
		}

		h.logger.Debug().Int64("blogID", blog.ID).Msg("Blog created")
		h.responder.WriteJSON(w, http.StatusCreated, blog)
	}
}

// updateBlog applies the fields present in the body and nothing else
// @Summary Partially update blog
// @Accept json
// @Param blogID path int true "Blog ID"
// @Success 202
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /blogs/{blogID} [put]
func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := pathID(r, blogIDParam)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var changes models.BlogChanges
		if err := decodeJSON(w, r, &changes); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if changes.Title.Null {
			h.responder.WriteError(w, errs.NewValidationError("title", "none is not an allowed value"))
			return
		}
		if changes.Body.Null {
			h.responder.WriteError(w, errs.NewValidationError("body", "none is not an allowed value"))
			return
		}

		err = h.sessions.WithSession(r.Context(), func(s database.Session) error {
			return s.BlogRepo().Update(blogID, changes)
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog", err))
			return
		}

		h.responder.WriteEmpty(w, http.StatusAccepted)
	}
}

// listBlogs returns every blog
// @Summary List blogs
// @Produce json
// @Success 200 {array} models.Blog
// @Router /blogs [get]
func (h blogHandler) listBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var blogs []*models.Blog
		err := h.sessions.WithSession(r.Context(), func(s database.Session) error {
			var err error
			blogs, err = s.BlogRepo().FindAll()
			return err
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blogs", err))
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, blogs)
	}
}

// getBlog returns one blog. Success is answered with 201, as existing
// clients expect.
// @Summary Get blog
// @Produce json
// @Param blogID path int true "Blog ID"
// @Success 201 {object} models.Blog
// @Failure 404 {object} ErrorResponse
// @Router /blogs/{blogID} [get]
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := pathID(r, blogIDParam)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var blog *models.Blog
		err = h.sessions.WithSession(r.Context(), func(s database.Session) error {
			var err error
			blog, err = s.BlogRepo().FindByID(blogID)
			return err
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog", err))
			return
		}

		h.responder.WriteJSON(w, http.StatusCreated, blog)
	}
}

// deleteBlog removes a blog
// @Summary Delete blog
// @Param blogID path int true "Blog ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /blogs/{blogID} [delete]
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := pathID(r, blogIDParam)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		err = h.sessions.WithSession(r.Context(), func(s database.Session) error {
			return s.BlogRepo().Delete(blogID)
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog", err))
			return
		}

		h.logger.Debug().Int64("blogID", blogID).Msg("Blog deleted")
		h.responder.WriteEmpty(w, http.StatusNoContent)
	}
}
