package server

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
	"github.com/df07/go-sound-tracer/pkg/material"
	"github.com/df07/go-sound-tracer/pkg/scene"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// InspectResponse represents the JSON response for a single-ray inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Termination  string                 `json:"termination"`
	GeometryType string                 `json:"geometryType"` // Primitive hit first
	Geometry     map[string]interface{} `json:"geometry"`
	Bounces      []BounceInfo           `json:"bounces"`
}

// BounceInfo describes one reflection of the inspected ray
type BounceInfo struct {
	MaterialType       string     `json:"materialType"`
	Point              [3]float64 `json:"point"`
	Normal             [3]float64 `json:"normal"`
	Distance           float64    `json:"distance"`
	Retained           float64    `json:"retained"`
	CumulativeRetained float64    `json:"cumulativeRetained"`
}

// extractMaterialInfo names a material by the preset it matches
func (s *Server) extractMaterialInfo(mat material.Material) string {
	names := make([]string, 0, len(material.Presets))
	for name := range material.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if material.Presets[name] == mat {
			return name
		}
	}
	if mat.IsSource {
		return "source"
	}
	return "custom"
}

// findPrimitive finds the primitive that produced the nearest hit of ray
// (the intersector returns the hit, not the primitive)
func findPrimitive(sceneObj *scene.Scene, ray core.Ray, hit geometry.HitInfo) geometry.Primitive {
	for _, sphere := range sceneObj.Spheres {
		if shapeHit, ok := sphere.Hit(ray, hit.T+0.001); ok && math.Abs(shapeHit.T-hit.T) < 1e-9 {
			return sphere
		}
	}
	for _, triangle := range sceneObj.Triangles {
		if shapeHit, ok := triangle.Hit(ray, hit.T+0.001); ok && math.Abs(shapeHit.T-hit.T) < 1e-9 {
			return triangle
		}
	}
	return nil
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Primitive) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = [3]float64{geom.Center.X, geom.Center.Y, geom.Center.Z}
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{
			{geom.V0.X, geom.V0.Y, geom.V0.Z},
			{geom.V1.X, geom.V1.Y, geom.V1.Z},
			{geom.V2.X, geom.V2.Y, geom.V2.Z},
		}
		n := geom.Normal()
		properties["normal"] = [3]float64{n.X, n.Y, n.Z}
		return "triangle", properties

	default:
		return "unknown", properties
	}
}

// handleInspect traces one ray in a chosen direction from the listener
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseTraceRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse the direction; defaults to the way the listener faces
	query := r.URL.Query()
	var dir core.Vec3
	if dir.X, err = parseFloatParam(query, "dx", 0, -1e6, 1e6); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dir.Y, err = parseFloatParam(query, "dy", 0, -1e6, 1e6); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dir.Z, err = parseFloatParam(query, "dz", 0, -1e6, 1e6); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := s.createScene(req, nil)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dir.IsZero() {
		dir = sceneObj.Listener.Forward
	}

	// Perform the inspection using the scene directly
	ray := core.NewRay(sceneObj.Listener.Position, dir.Normalize())
	chain := sceneObj.Tracer().Trace(ray)
	chain = chain.Weighted(sceneObj.TracerConfig.Weighting)

	response := InspectResponse{
		Hit:         len(chain.Records) > 0,
		Termination: chain.Termination.String(),
		Bounces:     make([]BounceInfo, 0, len(chain.Records)),
	}
	for _, rec := range chain.Records {
		response.Bounces = append(response.Bounces, s.bounceInfo(rec))
	}
	if response.Hit {
		response.GeometryType, response.Geometry = s.extractGeometryInfo(findPrimitive(sceneObj, ray, chain.Records[0].Hit))
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (s *Server) bounceInfo(rec tracer.ReflectionRecord) BounceInfo {
	hit := rec.Hit
	return BounceInfo{
		MaterialType:       s.extractMaterialInfo(hit.Material),
		Point:              [3]float64{hit.Position.X, hit.Position.Y, hit.Position.Z},
		Normal:             [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:           hit.T,
		Retained:           hit.Material.Retained,
		CumulativeRetained: rec.CumulativeRetained,
	}
}
