// Package engine converts raw activity events into persisted score changes.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DuneReaper/dune-reapers-bot/internal/domain"
	"github.com/DuneReaper/dune-reapers-bot/internal/notify"
	"github.com/DuneReaper/dune-reapers-bot/internal/store"
)

// VoiceEvent is a single observed voice state transition. Empty channel IDs
// mean "not in a channel"; ChannelName carries the raw name of the channel
// being joined or left.
type VoiceEvent struct {
	MemberID      string
	BeforeChannel string
	AfterChannel  string
	ChannelName   string
	Exempt        bool
	Now           time.Time
}

// Engine is the activity scoring core. It owns the voice session tracker
// and is the only caller of the store's point-mutation paths besides the
// decay sweeper.
type Engine struct {
	repo     store.Repo
	tracker  *VoiceTracker
	notifier notify.Notifier
	log      *zap.Logger
}

// New wires an engine from its collaborators.
func New(repo store.Repo, notifier notify.Notifier, log *zap.Logger) *Engine {
	return &Engine{
		repo:     repo,
		tracker:  NewVoiceTracker(),
		notifier: notifier,
		log:      log,
	}
}

// HandleMessage awards the flat message delta for a non-bot, non-exempt
// member and refreshes their activity timestamp.
func (e *Engine) HandleMessage(ctx context.Context, memberID string, isBot, isExempt bool) error {
	if isBot || isExempt {
		return nil
	}
	return e.repo.AddPoints(ctx, memberID, domain.MessagePoints, time.Now().UTC())
}

// HandleVoiceState tracks joins and converts leaves into point awards.
// It returns the points credited (zero for joins, moves and no-ops).
// Exempt members never open sessions and never earn.
func (e *Engine) HandleVoiceState(ctx context.Context, ev VoiceEvent) (int, error) {
	if ev.Exempt {
		return 0, nil
	}
	now := ev.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	joined := ev.BeforeChannel == "" && ev.AfterChannel != ""
	left := ev.BeforeChannel != "" && ev.AfterChannel == ""

	switch {
	case joined:
		if !e.tracker.Open(ev.MemberID, ev.AfterChannel, ev.ChannelName, now) {
			e.log.Debug("voice join with open session ignored",
				zap.String("member", ev.MemberID),
				zap.String("channel", ev.AfterChannel),
			)
		}
		return 0, nil

	case left:
		sess, ok := e.tracker.Close(ev.MemberID)
		if !ok {
			// Leave with no matching join; nothing to credit.
			return 0, nil
		}
		units := domain.VoiceUnits(now.Sub(sess.StartedAt))
		rate := domain.ChannelRate(sess.ChannelName)
		points := domain.VoicePoints(units, rate)
		if err := e.repo.AddPoints(ctx, ev.MemberID, float64(points), now); err != nil {
			return 0, err
		}
		e.log.Info("voice session closed",
			zap.String("member", ev.MemberID),
			zap.String("channel", sess.ChannelName),
			zap.Int("units", units),
			zap.Int("points", points),
		)
		return points, nil

	default:
		// Channel move (or a transition we already account for): the open
		// session, if any, keeps running against its original channel.
		return 0, nil
	}
}

// RequestAbsence validates a declared absence window, marks the member on
// break and notifies the review channel. Validation failures leave state
// untouched; a notification failure does not undo the committed break.
func (e *Engine) RequestAbsence(ctx context.Context, memberID, startText, endText, reason string) error {
	start, end, err := domain.ParseAbsenceWindow(startText, endText)
	if err != nil {
		return err
	}
	if err := e.repo.SetBreak(ctx, memberID, start, end); err != nil {
		return err
	}

	req := notify.AbsenceRequest{
		RequestID: uuid.NewString(),
		MemberID:  memberID,
		Reason:    reason,
		Start:     start,
		End:       end,
	}
	if err := e.notifier.AbsenceRequested(ctx, req); err != nil {
		e.log.Warn("absence review notification failed",
			zap.Error(err),
			zap.String("member", memberID),
			zap.String("request", req.RequestID),
		)
	}
	return nil
}

// EndAbsence clears the member's break unconditionally, even before the
// declared window has passed.
func (e *Engine) EndAbsence(ctx context.Context, memberID string) error {
	return e.repo.ClearBreak(ctx, memberID)
}

// Score returns the member's current score, or store.ErrNotFound for a
// member with no activity yet.
func (e *Engine) Score(ctx context.Context, memberID string) (float64, error) {
	u, err := e.repo.GetUser(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return u.Score, nil
}

// OnBreak lists members currently on break, earliest break start first.
func (e *Engine) OnBreak(ctx context.Context) ([]domain.UserRecord, error) {
	return e.repo.ListOnBreak(ctx)
}
