package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler   blogHandler
	healthHandler healthHandler
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Details string `json:"details"`
	Field   string `json:"field,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	StartedAt string `json:"startedAt"`
	Uptime    string `json:"uptime"`
}
