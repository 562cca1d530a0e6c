package domain

import "time"

// DefaultScore is the ELO every member starts from.
const DefaultScore = 1000.0

// UserRecord is the persisted activity state for one community member.
type UserRecord struct {
	MemberID   string
	Score      float64
	LastActive *time.Time // UTC, nil until the first point-earning event
	OnBreak    bool
	BreakStart *time.Time // UTC, set together with BreakEnd while OnBreak
	BreakEnd   *time.Time
}
