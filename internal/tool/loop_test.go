package tool

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLoopDetectorFlagsThresholdWithinWindow(t *testing.T) {
	d := NewLoopDetector(3, time.Minute)
	input := json.RawMessage(`{"path":"a.md"}`)

	if d.Check("s", "write_note", input) {
		t.Fatal("first call flagged")
	}
	if d.Check("s", "write_note", input) {
		t.Fatal("second call flagged")
	}
	if !d.Check("s", "write_note", input) {
		t.Fatal("third identical call not flagged")
	}
}

func TestLoopDetectorExpiresOutsideWindow(t *testing.T) {
	d := NewLoopDetector(3, time.Minute)
	now := time.Now()
	d.now = func() time.Time { return now }
	input := json.RawMessage(`{}`)

	d.Check("s", "write_note", input)
	d.Check("s", "write_note", input)

	now = now.Add(2 * time.Minute)
	if d.Check("s", "write_note", input) {
		t.Fatal("calls outside the window must not count toward the streak")
	}
}

func TestLoopDetectorSessionsAreIndependent(t *testing.T) {
	d := NewLoopDetector(2, time.Minute)
	input := json.RawMessage(`{}`)

	d.Check("a", "write_note", input)
	if d.Check("b", "write_note", input) {
		t.Fatal("history leaked across sessions")
	}
}

func TestLoopDetectorClear(t *testing.T) {
	d := NewLoopDetector(2, time.Minute)
	input := json.RawMessage(`{}`)

	d.Check("s", "write_note", input)
	d.Clear("s")
	if d.Check("s", "write_note", input) {
		t.Fatal("cleared history still counted")
	}
}
