package server

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Console keeps the most recent log lines written to it. It is meant to be
// added as a log sink next to stdout.
type Console struct {
	mu       sync.Mutex
	limit    int
	messages []ConsoleMessage
}

// NewConsole creates a console holding up to limit messages
func NewConsole(limit int) *Console {
	return &Console{limit: max(1, limit)}
}

// Write implements io.Writer. Each non-empty line becomes one message.
func (c *Console) Write(p []byte) (int, error) {
	now := time.Now()
	text := ansiEscape.ReplaceAllString(string(p), "")

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		c.messages = append(c.messages, ConsoleMessage{Message: line, Timestamp: now})
	}
	if overflow := len(c.messages) - c.limit; overflow > 0 {
		c.messages = append(c.messages[:0:0], c.messages[overflow:]...)
	}
	return len(p), nil
}

// Messages returns a copy of the stored messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleMessage{}, c.messages...)
}
