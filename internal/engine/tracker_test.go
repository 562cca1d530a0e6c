package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTrackerOpenClose(t *testing.T) {
	tr := NewVoiceTracker()
	start := time.Now().UTC()

	if !tr.Open("m1", "c1", "Operation Alpha", start) {
		t.Fatal("first Open should succeed")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}

	sess, ok := tr.Close("m1")
	if !ok {
		t.Fatal("Close should find the session")
	}
	if sess.ChannelID != "c1" || sess.ChannelName != "Operation Alpha" {
		t.Errorf("session = %+v", sess)
	}
	if !sess.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, start)
	}
	if tr.Len() != 0 {
		t.Errorf("Len after close = %d, want 0", tr.Len())
	}
}

func TestTrackerCloseWithoutJoin(t *testing.T) {
	tr := NewVoiceTracker()
	if _, ok := tr.Close("ghost"); ok {
		t.Fatal("Close with no session must report ok=false")
	}
}

func TestTrackerDoubleOpenKeepsOriginal(t *testing.T) {
	tr := NewVoiceTracker()
	start := time.Now().UTC()

	tr.Open("m1", "c1", "Operation Alpha", start)
	if tr.Open("m1", "c2", "General", start.Add(time.Minute)) {
		t.Fatal("second Open for the same member should be rejected")
	}

	sess, ok := tr.Close("m1")
	if !ok {
		t.Fatal("session missing")
	}
	if sess.ChannelID != "c1" || !sess.StartedAt.Equal(start) {
		t.Errorf("original session not retained: %+v", sess)
	}
	if tr.Len() != 0 {
		t.Errorf("Len = %d, want 0 (no leaked session from rejected open)", tr.Len())
	}
}

func TestTrackerConcurrentMembers(t *testing.T) {
	tr := NewVoiceTracker()
	start := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", i)
			tr.Open(id, "c", "Roam", start)
			if _, ok := tr.Close(id); !ok {
				t.Errorf("member %s lost its session", id)
			}
		}(i)
	}
	wg.Wait()

	if tr.Len() != 0 {
		t.Errorf("Len = %d, want 0", tr.Len())
	}
}
