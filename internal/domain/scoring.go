package domain

import (
	"strings"
	"time"
	"unicode"
)

// MessagePoints is the flat award for a single non-bot, non-command message.
const MessagePoints = 0.5

// Voice award parameters. A "unit" is one full 5-minute block of presence;
// closing a session always credits at least one unit.
const (
	voiceUnitSeconds = 300

	OperationRate    = 2.5
	RoamRate         = 1.0
	DefaultVoiceRate = 1.0
)

// VoiceUnits converts an elapsed session duration into billable units.
func VoiceUnits(elapsed time.Duration) int {
	units := int(elapsed.Seconds()) / voiceUnitSeconds
	if units < 1 {
		units = 1
	}
	return units
}

// ChannelRate classifies a raw voice channel name into a points-per-unit
// rate. The name is normalized first: every non-letter rune is stripped and
// the rest lowercased, so "Operation Alpha-2" and "operationalpha" classify
// the same.
func ChannelRate(channelName string) float64 {
	name := NormalizeChannelName(channelName)
	switch {
	case strings.HasPrefix(name, "operation"):
		return OperationRate
	case strings.HasPrefix(name, "roam"):
		return RoamRate
	default:
		return DefaultVoiceRate
	}
}

// NormalizeChannelName lowercases the name and drops every non-letter rune.
func NormalizeChannelName(channelName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(channelName) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VoicePoints computes the whole points awarded for a closed session.
func VoicePoints(units int, rate float64) int {
	return int(float64(units) * rate)
}
