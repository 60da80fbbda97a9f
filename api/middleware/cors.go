package middleware

import (
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the configured allowed origin policy.
// Credentials are allowed so the edit session cookie reaches the API.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
