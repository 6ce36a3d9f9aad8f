package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS разрешает календарному фронтенду читать доступность с указанных origin
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", HeaderRequestID, "X-Session-Id", "X-Organization-Id"},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         600,
	})
	return c.Handler
}
