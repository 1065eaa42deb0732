package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ConsoleEntry is one message the page wrote to its console.
type ConsoleEntry struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// ConsoleRecorder captures a page's console output. Playwright delivers
// console events on its own goroutine, so access is serialized.
type ConsoleRecorder struct {
	mu      sync.Mutex
	entries []ConsoleEntry
}

// NewConsoleRecorder creates an empty recorder.
func NewConsoleRecorder() *ConsoleRecorder {
	return &ConsoleRecorder{}
}

func (r *ConsoleRecorder) record(msg playwright.ConsoleMessage) {
	r.Add(msg.Type(), msg.Text())
}

// Add appends an entry.
func (r *ConsoleRecorder) Add(level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, ConsoleEntry{Level: level, Text: text, At: time.Now()})
}

// Entries returns the captured entries, optionally only those whose level is
// one of levels.
func (r *ConsoleRecorder) Entries(levels ...string) []ConsoleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(levels) == 0 {
		return append([]ConsoleEntry(nil), r.entries...)
	}

	var out []ConsoleEntry
	for _, e := range r.entries {
		for _, l := range levels {
			if e.Level == l {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Reset drops everything captured so far.
func (r *ConsoleRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
