package domain

import (
	"testing"
	"time"
)

func TestVoiceUnits(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"under one block still credits one unit", 30 * time.Second, 1},
		{"exactly one block", 300 * time.Second, 1},
		{"two blocks plus change", 610 * time.Second, 2},
		{"an hour", time.Hour, 12},
		{"zero", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VoiceUnits(tt.elapsed); got != tt.want {
				t.Errorf("VoiceUnits(%v) = %d, want %d", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestChannelRate(t *testing.T) {
	tests := []struct {
		channel string
		want    float64
	}{
		{"Operation Alpha", 2.5},
		{"operation-dusk 2", 2.5},
		{"roam-north", 1.0},
		{"Roaming Party", 1.0},
		{"General", 1.0},
		{"", 1.0},
		{"🔊 OPERATION bridge", 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			if got := ChannelRate(tt.channel); got != tt.want {
				t.Errorf("ChannelRate(%q) = %v, want %v", tt.channel, got, tt.want)
			}
		})
	}
}

func TestNormalizeChannelName(t *testing.T) {
	if got := NormalizeChannelName("roam-north"); got != "roamnorth" {
		t.Errorf("got %q, want roamnorth", got)
	}
	if got := NormalizeChannelName("Operation Alpha 2"); got != "operationalpha" {
		t.Errorf("got %q, want operationalpha", got)
	}
}

func TestVoicePoints(t *testing.T) {
	// Session of 610s in an operation channel: 2 units * 2.5 = 5 points.
	if got := VoicePoints(VoiceUnits(610*time.Second), OperationRate); got != 5 {
		t.Errorf("610s operation session = %d points, want 5", got)
	}
	// Session of 30s in the same channel: minimum 1 unit * 2.5 floored = 2.
	if got := VoicePoints(VoiceUnits(30*time.Second), OperationRate); got != 2 {
		t.Errorf("30s operation session = %d points, want 2", got)
	}
	if got := VoicePoints(3, DefaultVoiceRate); got != 3 {
		t.Errorf("3 units at default rate = %d, want 3", got)
	}
}
