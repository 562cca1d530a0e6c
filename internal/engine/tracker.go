package engine

import (
	"hash/fnv"
	"sync"
	"time"
)

// VoiceSession is one member's open voice presence. Sessions live only in
// memory: a process restart drops them and the elapsed time is never
// retroactively credited.
type VoiceSession struct {
	ChannelID   string
	ChannelName string
	StartedAt   time.Time
}

const trackerShards = 16

// VoiceTracker holds open voice sessions keyed by member ID. The map is
// sharded so joins and leaves for different members never contend on a
// single lock, while operations on the same member serialize on its shard.
type VoiceTracker struct {
	shards [trackerShards]trackerShard
}

type trackerShard struct {
	mu       sync.Mutex
	sessions map[string]VoiceSession
}

// NewVoiceTracker creates an empty tracker.
func NewVoiceTracker() *VoiceTracker {
	t := &VoiceTracker{}
	for i := range t.shards {
		t.shards[i].sessions = make(map[string]VoiceSession)
	}
	return t
}

func (t *VoiceTracker) shard(memberID string) *trackerShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(memberID))
	return &t.shards[h.Sum32()%trackerShards]
}

// Open starts a session for the member unless one is already open. When a
// session exists (a channel move observed without a leave) the original
// session is kept, including its channel, so elapsed time is credited once
// under the channel the member first joined.
func (t *VoiceTracker) Open(memberID, channelID, channelName string, now time.Time) bool {
	s := t.shard(memberID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[memberID]; exists {
		return false
	}
	s.sessions[memberID] = VoiceSession{
		ChannelID:   channelID,
		ChannelName: channelName,
		StartedAt:   now,
	}
	return true
}

// Close removes and returns the member's session. Closing with no open
// session reports ok=false, which covers a leave observed with no matching
// join (e.g. right after startup).
func (t *VoiceTracker) Close(memberID string) (VoiceSession, bool) {
	s := t.shard(memberID)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[memberID]
	if ok {
		delete(s.sessions, memberID)
	}
	return sess, ok
}

// Len reports the number of currently open sessions.
func (t *VoiceTracker) Len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].mu.Lock()
		n += len(t.shards[i].sessions)
		t.shards[i].mu.Unlock()
	}
	return n
}
