// Package api exposes the scoring engine to the platform adapter over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DuneReaper/dune-reapers-bot/internal/domain"
	"github.com/DuneReaper/dune-reapers-bot/internal/engine"
	"github.com/DuneReaper/dune-reapers-bot/internal/store"
)

// Handler holds the API's dependencies.
type Handler struct {
	Engine *engine.Engine
	Log    *zap.Logger
}

// NewRouter builds the gin engine with all routes and middleware attached.
// ratePerMinute <= 0 disables rate limiting (used by tests).
func NewRouter(h *Handler, ratePerMinute int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if ratePerMinute > 0 {
		r.Use(RateLimit(ratePerMinute))
	}

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	v1 := r.Group("/v1")
	{
		v1.POST("/events/message", h.PostMessageEvent)
		v1.POST("/events/voice", h.PostVoiceEvent)
		v1.POST("/absences", h.PostAbsence)
		v1.POST("/members/:id/return", h.PostReturn)
		v1.GET("/members/:id/score", h.GetScore)
		v1.GET("/absences", h.GetAbsences)
	}
	return r
}

type messageEvent struct {
	MemberID string `json:"member_id" binding:"required"`
	Bot      bool   `json:"bot"`
	Exempt   bool   `json:"exempt"`
}

// PostMessageEvent records one message-sent activity event.
func (h *Handler) PostMessageEvent(c *gin.Context) {
	var ev messageEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Engine.HandleMessage(c.Request.Context(), ev.MemberID, ev.Bot, ev.Exempt); err != nil {
		h.Log.Error("message event failed", zap.Error(err), zap.String("member", ev.MemberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type voiceEvent struct {
	MemberID      string `json:"member_id" binding:"required"`
	BeforeChannel string `json:"before_channel"`
	AfterChannel  string `json:"after_channel"`
	ChannelName   string `json:"channel_name"`
	Exempt        bool   `json:"exempt"`
}

// PostVoiceEvent records one voice state transition; leaves report the
// points credited for the closed session.
func (h *Handler) PostVoiceEvent(c *gin.Context) {
	var ev voiceEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.Engine.HandleVoiceState(c.Request.Context(), engine.VoiceEvent{
		MemberID:      ev.MemberID,
		BeforeChannel: ev.BeforeChannel,
		AfterChannel:  ev.AfterChannel,
		ChannelName:   ev.ChannelName,
		Exempt:        ev.Exempt,
		Now:           time.Now().UTC(),
	})
	if err != nil {
		h.Log.Error("voice event failed", zap.Error(err), zap.String("member", ev.MemberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

type absenceRequest struct {
	MemberID  string `json:"member_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

// PostAbsence submits a declared absence window.
func (h *Handler) PostAbsence(c *gin.Context) {
	var req absenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Engine.RequestAbsence(c.Request.Context(), req.MemberID, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		if domain.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("absence request failed", zap.Error(err), zap.String("member", req.MemberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "on_break"})
}

// PostReturn ends a member's break regardless of the declared window.
func (h *Handler) PostReturn(c *gin.Context) {
	memberID := c.Param("id")
	if err := h.Engine.EndAbsence(c.Request.Context(), memberID); err != nil {
		h.Log.Error("end absence failed", zap.Error(err), zap.String("member", memberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// GetScore returns a member's current score.
func (h *Handler) GetScore(c *gin.Context) {
	memberID := c.Param("id")
	score, err := h.Engine.Score(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no activity yet"})
			return
		}
		h.Log.Error("score query failed", zap.Error(err), zap.String("member", memberID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "score": score})
}

type absenceEntry struct {
	MemberID   string    `json:"member_id"`
	BreakStart time.Time `json:"break_start"`
	BreakEnd   time.Time `json:"break_end"`
}

// GetAbsences lists members currently on break, earliest break start first.
func (h *Handler) GetAbsences(c *gin.Context) {
	users, err := h.Engine.OnBreak(c.Request.Context())
	if err != nil {
		h.Log.Error("on-break listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	entries := make([]absenceEntry, 0, len(users))
	for _, u := range users {
		e := absenceEntry{MemberID: u.MemberID}
		if u.BreakStart != nil {
			e.BreakStart = *u.BreakStart
		}
		if u.BreakEnd != nil {
			e.BreakEnd = *u.BreakEnd
		}
		entries = append(entries, e)
	}
	c.JSON(http.StatusOK, entries)
}
