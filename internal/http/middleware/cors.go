package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browser clients call the calendar and metadata APIs. Location is
// exposed so a client can follow the URL of a resource it just created.
func CORS(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: allowCredentials,
		MaxAge:           600,
	})
}
