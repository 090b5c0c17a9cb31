package tool

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// maxLoopHistory bounds per-session history growth.
const maxLoopHistory = 10

// loopCall is one recorded (tool, parameters) observation.
type loopCall struct {
	hash string
	at   time.Time
}

// LoopDetector tracks repeated tool calls per session and flags a call
// when the same (tool, serialized parameters) pair recurs threshold times
// within the window. Successive different calls break the streak.
type LoopDetector struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	history   map[string][]loopCall

	now func() time.Time // test seam
}

// NewLoopDetector creates a detector with the given threshold and window.
func NewLoopDetector(threshold int, window time.Duration) *LoopDetector {
	return &LoopDetector{
		threshold: threshold,
		window:    window,
		history:   make(map[string][]loopCall),
		now:       time.Now,
	}
}

// Check records the call and reports whether it completes a loop. The
// flagged call is the threshold-th identical call within the window,
// regardless of whether the earlier calls succeeded.
func (d *LoopDetector) Check(sessionID, toolName string, input json.RawMessage) bool {
	hash := hashCall(toolName, input)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	history := append(d.history[sessionID], loopCall{hash: hash, at: now})
	if len(history) > maxLoopHistory {
		history = history[len(history)-maxLoopHistory:]
	}
	d.history[sessionID] = history

	if len(history) < d.threshold {
		return false
	}
	cutoff := now.Add(-d.window)
	for _, c := range history[len(history)-d.threshold:] {
		if c.hash != hash || c.at.Before(cutoff) {
			return false
		}
	}
	return true
}

// Clear drops all recorded history for a session.
func (d *LoopDetector) Clear(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.history, sessionID)
}

// hashCall fingerprints a tool name plus its serialized parameters.
func hashCall(toolName string, input json.RawMessage) string {
	data, _ := json.Marshal(map[string]any{
		"tool":  toolName,
		"input": string(input),
	})
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
