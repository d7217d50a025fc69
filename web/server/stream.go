package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/frame"
	"github.com/df07/go-sound-tracer/pkg/listener"
	"github.com/df07/go-sound-tracer/pkg/scene"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// FrameUpdate is the payload of a "frame" event
type FrameUpdate struct {
	Frame       int           `json:"frame"`
	TotalFrames int           `json:"totalFrames"`
	ElapsedMs   int64         `json:"elapsedMs"`
	Listener    listener.Pose `json:"listener"`
	Points      []FramePoint  `json:"points"`
	Stats       frame.Stats   `json:"stats"`
}

// FramePoint is one reflection point as the client draws it
type FramePoint struct {
	Position [3]float64 `json:"position"`
	Weight   float64    `json:"weight"`
	Source   bool       `json:"source"`
}

// handleStream traces frames while the listener turns and streams them via SSE
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)

	// Start single SSE writer goroutine; it drains the channel before the
	// handler returns
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	// Parse and validate request
	req, err := s.parseTraceRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()
	defer func() {
		stopConsole()
		<-consoleDone
	}()

	driver, sceneObj, err := s.setupDriver(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}
	defer driver.Close()

	// Trace frames and send them to the unified channel
	startTime := time.Now()
	pose := frame.Turning(sceneObj.Listener, req.YawDeg*math.Pi/180)
	err = driver.Run(ctx, req.Frames, pose, func(f frame.Frame) error {
		return s.handleFrame(ctx, sseEventChan, f, req, startTime)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Client disconnected
			return
		}
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Tracing failed: %v", err))
		return
	}

	// Send completion event
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Tracing completed"}:
	case <-ctx.Done():
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a stream
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	streamID := fmt.Sprintf("stream-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(streamID, consoleChan)
	return consoleChan, webLogger
}

// setupDriver loads the scene and creates the frame driver for a stream
func (s *Server) setupDriver(req *TraceRequest, logger core.Logger) (*frame.Driver, *scene.Scene, error) {
	sceneObj, err := s.createScene(req, logger)
	if err != nil {
		return nil, nil, err
	}
	return frame.NewDriver(sceneObj, s.frameConfig(req), logger), sceneObj, nil
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Write SSE event
			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages handles the console message streaming goroutine
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			// Send console message as SSE event
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			// Send to unified SSE channel
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleFrame converts a traced frame and sends it as a "frame" event
func (s *Server) handleFrame(ctx context.Context, sseEventChan chan SSEEvent, f frame.Frame, req *TraceRequest, startTime time.Time) error {
	update := FrameUpdate{
		Frame:       f.Number,
		TotalFrames: req.Frames,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
		Listener:    f.Listener,
		Points:      make([]FramePoint, 0, len(f.Records)),
		Stats:       f.Stats,
	}
	for _, rec := range f.Records {
		p := rec.Hit.Position
		update.Points = append(update.Points, FramePoint{
			Position: [3]float64{p.X, p.Y, p.Z},
			Weight:   rec.CumulativeRetained,
			Source:   rec.Hit.Material.IsSource,
		})
	}

	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal frame update: %w", err)
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(data)}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
