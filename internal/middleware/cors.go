package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 300

// CORS allows the listed origins to call the API with credentials so the auth
// cookie travels on cross-origin requests. With no origins, cross-origin
// requests get no CORS headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	// go-chi/cors treats an empty list as "allow all".
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}
