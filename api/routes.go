package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("PROMPTPACK_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("PROMPTPACK_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set PROMPTPACK_API_KEY or set PROMPTPACK_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)
	api.GET("/packs", s.handleListPacks)

	api.POST("/lint", s.handleLint)
	api.POST("/render", s.handleRender)
	api.POST("/validate", s.handleValidate)

	api.GET("/history/renders", s.handleRenderHistory)
	api.GET("/history/validations", s.handleValidationHistory)

	return nil
}
