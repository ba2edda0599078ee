package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/sanket913/VoiceMitra/internal/config"
)

// corsMiddleware answers preflight requests for allowed origins. Requests
// from other origins are served without CORS headers.
func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}).Handler
}
