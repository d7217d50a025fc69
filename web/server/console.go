package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-sound-tracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
	StreamID  string    `json:"streamId"`
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	streamID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific stream
func NewWebLogger(streamID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		streamID:    streamID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to stdout for server logs
	fmt.Print(message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     messageLevel(message),
			StreamID:  wl.streamID,
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// messageLevel picks the console level from the message prefix
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.HasPrefix(lower, "error"):
		return "error"
	case strings.HasPrefix(lower, "warning"):
		return "warning"
	default:
		return "info"
	}
}
