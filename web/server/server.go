package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/frame"
	"github.com/df07/go-sound-tracer/pkg/scene"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// Server handles web requests for the sound tracer
type Server struct {
	port int
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	s := &Server{port: port, mux: http.NewServeMux()}

	// Serve static files
	s.mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/trace", s.handleTrace)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/stream", s.handleStream)

	return s
}

// TraceRequest represents a trace or stream request from the client
type TraceRequest struct {
	Scene      string            `json:"scene"`      // Scene id (e.g., "default", "json:small-studio")
	Rays       int               `json:"rays"`       // Rays per frame
	Seed       int64             `json:"seed"`       // Base seed for the ray generators
	MaxBounces *int              `json:"maxBounces"` // Overrides the scene's bounce budget
	Weighting  *tracer.Weighting `json:"weighting"`  // Overrides the scene's absorption ordering
	Position   *core.Vec3        `json:"position"`   // Overrides the listener position
	Frames     int               `json:"frames"`     // Frames to stream
	FrameRate  int               `json:"frameRate"`  // Stream pacing (0 = unpaced)
	YawDeg     float64           `json:"yawDeg"`     // Listener turn per streamed frame
}

// TraceResponse is the JSON body of /api/trace
type TraceResponse struct {
	Scene          string      `json:"scene"`
	PrimitiveCount int         `json:"primitiveCount"`
	SourceCount    int         `json:"sourceCount"`
	ElapsedMs      int64       `json:"elapsedMs"`
	Frame          frame.Frame `json:"frame"`
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleTrace traces a single frame and returns it as JSON
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseTraceRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(req, nil)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	startTime := time.Now()
	driver := frame.NewDriver(sceneObj, s.frameConfig(req), nil)
	defer driver.Close()

	f, err := driver.RenderFrame(sceneObj.Listener)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(TraceResponse{
		Scene:          sceneObj.Name,
		PrimitiveCount: sceneObj.GetPrimitiveCount(),
		SourceCount:    sceneObj.SourceCount(),
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		Frame:          f,
	})
}

// parseTraceRequest parses request parameters
func (s *Server) parseTraceRequest(r *http.Request) (*TraceRequest, error) {
	query := r.URL.Query()
	req := &TraceRequest{}

	// Parse scene name (string parameter, no validation needed)
	if sceneID := query.Get("scene"); sceneID != "" {
		req.Scene = sceneID
	} else {
		req.Scene = "default" // Default scene
	}

	// Parse and validate all parameters using helper functions
	var err error
	if req.Rays, err = parseIntParam(query, "rays", frame.DefaultConfig().RayCount, 1, 10000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(frame.DefaultConfig().Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	if query.Has("maxBounces") {
		maxBounces, err := parseIntParam(query, "maxBounces", 0, 0, 100)
		if err != nil {
			return nil, err
		}
		req.MaxBounces = &maxBounces
	}
	if query.Has("weighting") {
		weighting, err := tracer.ParseWeighting(query.Get("weighting"))
		if err != nil {
			return nil, err
		}
		req.Weighting = &weighting
	}
	if query.Has("x") || query.Has("y") || query.Has("z") {
		var p core.Vec3
		if p.X, err = parseFloatParam(query, "x", 0, -1e6, 1e6); err != nil {
			return nil, err
		}
		if p.Y, err = parseFloatParam(query, "y", 0, -1e6, 1e6); err != nil {
			return nil, err
		}
		if p.Z, err = parseFloatParam(query, "z", 0, -1e6, 1e6); err != nil {
			return nil, err
		}
		req.Position = &p
	}

	// Stream-only parameters
	if req.Frames, err = parseIntParam(query, "frames", 30, 1, 3600); err != nil {
		return nil, err
	}
	if req.FrameRate, err = parseIntParam(query, "fps", frame.DefaultConfig().FrameRate, 0, 120); err != nil {
		return nil, err
	}
	if req.YawDeg, err = parseFloatParam(query, "yawDeg", 3, -180, 180); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Rays*req.Frames > 1000000 {
		log.Printf("Trace warning: %d rays over %d frames may stream slowly", req.Rays, req.Frames)
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if math.IsNaN(float64(parsed)) || math.IsInf(float64(parsed), 0) {
			return 0, fmt.Errorf("%s must be a finite number, got: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene loads the requested scene and applies the request overrides
func (s *Server) createScene(req *TraceRequest, logger core.Logger) (*scene.Scene, error) {
	sceneObj, err := scene.LoadScene(req.Scene)
	if err != nil {
		return nil, err
	}

	if req.MaxBounces != nil {
		sceneObj.TracerConfig.MaxBounces = *req.MaxBounces
	}
	if req.Weighting != nil {
		sceneObj.TracerConfig.Weighting = *req.Weighting
	}
	if req.Position != nil {
		sceneObj.Listener = sceneObj.Listener.MoveTo(*req.Position)
	}

	if logger != nil {
		logger.Printf("Loaded scene %s: %d primitives, %d sources, max %d bounces\n",
			sceneObj.Name, sceneObj.GetPrimitiveCount(), sceneObj.SourceCount(), sceneObj.TracerConfig.MaxBounces)
	}
	return sceneObj, nil
}

// frameConfig builds the frame driver configuration for a request
func (s *Server) frameConfig(req *TraceRequest) frame.Config {
	return frame.Config{
		RayCount:   req.Rays,
		FrameRate:  req.FrameRate,
		NumWorkers: 0, // Auto-detect
		Seed:       req.Seed,
	}
}

// writeJSONError writes {"error": message} with the given status
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
