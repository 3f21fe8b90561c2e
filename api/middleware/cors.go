package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Storefront, admin dashboard, and preview deployment origins.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://tiffinbox.in",
	"https://www.tiffinbox.in",
	"https://admin.tiffinbox.in",
	"https://tiffinbox.vercel.app",
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
