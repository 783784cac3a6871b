// Package api exposes the pack resolution pipeline over HTTP. It is a
// thin adapter: route handlers parse, render, and validate through the
// internal packages and own no resolution logic themselves.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AltairaLabs/promptpack-go/internal/config"
	"github.com/AltairaLabs/promptpack-go/internal/store"
)

type Server struct {
	router *gin.Engine
	store  store.Store
	config *config.Config
}

func NewServer(cfg *config.Config, st store.Store) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	r := gin.New()
	s := &Server{
		router: r,
		store:  st,
		config: cfg,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
