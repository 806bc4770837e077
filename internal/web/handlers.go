package web

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/calendar"
	"github.com/merzah/merzah/internal/events"
	"github.com/merzah/merzah/internal/models"
)

const (
	userHeader     = "X-User-ID"
	maxRequestSize = 64 << 10 // 64KB
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Events

func (s *Server) handleCreateEvent(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}

	var in events.CreateEventInput
	if !s.bind(c, &in) {
		return
	}
	in.CreatedBy = userID

	event, err := s.events.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": event})
}

func (s *Server) handleGetEvent(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}

	event, err := s.events.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": event})
}

func (s *Server) handleEditEvent(c *gin.Context) {
	if _, ok := s.user(c); !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	var in events.UpdateEventInput
	if !s.bind(c, &in) {
		return
	}

	event, err := s.events.Edit(c.Request.Context(), id, in)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": event})
}

func (s *Server) handleStopRecurring(c *gin.Context) {
	if _, ok := s.user(c); !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	event, err := s.events.StopRecurring(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": event})
}

func (s *Server) handleDeleteSeries(c *gin.Context) {
	if _, ok := s.user(c); !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.events.DeleteSeries(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RSVP

func (s *Server) handleAttend(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.events.Attend(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleUnattend(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.events.Unattend(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAttendees(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}

	users, err := s.events.Attendees(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": users, "count": len(users)})
}

// Feeds

func (s *Server) handleFeed(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}

	feed, err := s.events.FavoriteFeed(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": feed, "count": len(feed)})
}

func (s *Server) handleMosqueEvents(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}

	// Anonymous viewers are allowed; they just get no RSVP flags.
	listing, err := s.events.MosqueEvents(c.Request.Context(), id, c.GetHeader(userHeader))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing, "count": len(listing)})
}

func (s *Server) handleCalendar(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	mosque, err := s.events.Mosque(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	listing, err := s.events.MosqueEvents(ctx, id, "")
	if err != nil {
		s.fail(c, err)
		return
	}

	list := make([]*models.Event, len(listing))
	for i, pe := range listing {
		list[i] = pe.Event
	}

	body := calendar.Build(mosque.Name, list, s.clock.Now())
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func (s *Server) handleFavorite(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.events.Favorite(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleUnfavorite(c *gin.Context) {
	userID, ok := s.user(c)
	if !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.events.Unfavorite(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Admin

func (s *Server) requireTriggerToken(c *gin.Context) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if s.triggerToken == "" || !found ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.triggerToken)) != 1 {
		s.fail(c, apperr.New(apperr.CodeUnauthorized, "invalid or missing trigger token"))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) handleTriggerRotation(c *gin.Context) {
	now := s.clock.Now()
	if raw := c.Query("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.fail(c, apperr.New(apperr.CodeValidationFailed, "now must be an RFC 3339 timestamp"))
			return
		}
		now = parsed
	}

	report, err := s.rotator.RunAt(c.Request.Context(), now)
	if err != nil {
		s.fail(c, err)
		return
	}

	log.Printf("Rotation triggered over HTTP at %s: %d rotated", now.Format(time.RFC3339), len(report.Rotated))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

func (s *Server) handleMosqueSummaries(c *gin.Context) {
	id, ok := s.id(c)
	if !ok {
		return
	}

	summaries, err := s.events.MosqueEventSummaries(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summaries, "count": len(summaries)})
}

// Helpers

func (s *Server) user(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(userHeader))
	if userID == "" {
		s.fail(c, apperr.New(apperr.CodeUnauthorized, userHeader+" header required"))
		return "", false
	}
	return userID, true
}

func (s *Server) id(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.fail(c, apperr.New(apperr.CodeValidationFailed, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) bind(c *gin.Context, target any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperr.CodeValidationFailed,
			"error":   "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}
	c.JSON(status, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}
