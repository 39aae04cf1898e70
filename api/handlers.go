package api

import (
	"time"

	"github.com/rpupo63/blogs-service/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		blogHandler:   newBlogHandler(database),
		healthHandler: newHealthHandler(database, startupTime),
	}
}
