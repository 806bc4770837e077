// Package web exposes the event lifecycle, feeds and the rotation trigger
// over HTTP.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/merzah/merzah/internal/clock"
	"github.com/merzah/merzah/internal/events"
	"github.com/merzah/merzah/internal/rotation"
)

// Rotator runs an operator-triggered rotation pass.
type Rotator interface {
	RunAt(ctx context.Context, now time.Time) (*rotation.Report, error)
}

// Server is the Merzah HTTP API
type Server struct {
	events       *events.Service
	rotator      Rotator
	clock        clock.Clock
	triggerToken string
	router       *gin.Engine
}

type Options struct {
	Events       *events.Service
	Rotator      Rotator
	Clock        clock.Clock
	TriggerToken string // Bearer token for admin routes; empty disables them
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		events:       opts.Events,
		rotator:      opts.Rotator,
		clock:        clk,
		triggerToken: opts.TriggerToken,
		router:       router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/events", s.handleCreateEvent)
		api.GET("/events/:id", s.handleGetEvent)
		api.PATCH("/events/:id", s.handleEditEvent)
		api.DELETE("/events/:id", s.handleDeleteSeries)
		api.POST("/events/:id/stop", s.handleStopRecurring)
		api.POST("/events/:id/rsvp", s.handleAttend)
		api.DELETE("/events/:id/rsvp", s.handleUnattend)
		api.GET("/events/:id/attendees", s.handleAttendees)

		api.GET("/feed", s.handleFeed)
		api.GET("/mosques/:id/events", s.handleMosqueEvents)
		api.GET("/mosques/:id/calendar.ics", s.handleCalendar)
		api.POST("/mosques/:id/favorite", s.handleFavorite)
		api.DELETE("/mosques/:id/favorite", s.handleUnfavorite)
	}

	admin := router.Group("/api/admin", s.requireTriggerToken)
	{
		admin.POST("/rotations", s.handleTriggerRotation)
		admin.GET("/mosques/:id/summaries", s.handleMosqueSummaries)
	}

	return s
}

// Handler returns the router for use in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
