package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/config"
)

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}

// CORS builds the cross-origin policy from configuration. The session
// cookie makes credentials mandatory, so a wildcard outside development
// is logged loudly.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	dev := environment == "development" || environment == "local" || environment == ""

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !dev {
			logger.Warn("CORS configured with wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAnyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case dev:
		options.AllowOriginFunc = allowAnyOrigin
		logger.Info("CORS allowing all origins in development mode")
	default:
		// An empty AllowedOrigins list would default to "*", so deny
		// explicitly when production ships without origins configured
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
		logger.Warn("CORS has no allowed origins, cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
