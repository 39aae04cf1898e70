package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes binds every endpoint of the service
func setupRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.health())

	r.Group(func(r chi.Router) {
		r.Use(HTTPLoggingMiddleware)

		r.Post("/blogs", handlers.blogHandler.createBlog())
		r.Get("/blogs", handlers.blogHandler.listBlogs())
		r.Get("/blogs/{blogID}", handlers.blogHandler.getBlog())
		r.Put("/blogs/{blogID}", handlers.blogHandler.updateBlog())
		r.Delete("/blogs/{blogID}", handlers.blogHandler.deleteBlog())
	})
}
