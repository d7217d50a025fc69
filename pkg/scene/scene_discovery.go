package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to scene file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtinGroup = "Built-in Scenes"

// builtinSceneInfo describes the scenes in builtinScenes
var builtinSceneInfo = []SceneInfo{
	{
		ID:          "default",
		Name:        "Default Room",
		Description: "Drywall room with a speaker, a crate and a carpeted pillar",
	},
	{
		ID:          "two-spheres",
		Name:        "Two Spheres",
		Description: "Source sphere behind a larger reflecting sphere, no triangles",
	},
	{
		ID:          "floor",
		Name:        "Floor",
		Description: "Two-triangle concrete floor with a source overhead",
	},
	{
		ID:          "corridor",
		Name:        "Corridor",
		Description: "Long brick corridor with a source at the far end",
	},
}

// findScenesDir returns the first scenes directory that exists, or ""
func findScenesDir() string {
	// Try different possible paths for scenes directory
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListJSONScenes scans the scenes directory and returns discovered scene files
func ListJSONScenes() ([]SceneInfo, error) {
	scenesDir := findScenesDir()
	if scenesDir == "" {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}
	return ListJSONScenesIn(scenesDir)
}

// ListJSONScenesIn returns the scene files found in dir
func ListJSONScenesIn(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata reads the descriptive fields of a scene file
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	// Extract filename without extension for fallback values
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          "json:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files", // Default group
		Type:        "json",
		FilePath:    filePath,
	}

	cfg, err := LoadConfig(filePath)
	if err != nil {
		return sceneInfo, err
	}

	if cfg.Name != "" {
		sceneInfo.Name = cfg.Name
		sceneInfo.DisplayName = cfg.Name
	}
	sceneInfo.Description = cfg.Description
	if cfg.Group != "" {
		sceneInfo.Group = cfg.Group
	}

	return sceneInfo, nil
}

// ListAllScenes returns both built-in and file scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	builtIn := make([]SceneInfo, 0, len(builtinSceneInfo))
	for _, info := range builtinSceneInfo {
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		builtIn = append(builtIn, info)
	}

	fileScenes, err := ListJSONScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(builtIn, fileScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// LoadScene resolves a scene id: "json:<file>" ids load from the scenes
// directory, a path ending in .json loads that file, anything else is built in
func LoadScene(id string) (*Scene, error) {
	switch {
	case strings.HasPrefix(id, "json:"):
		scenesDir := findScenesDir()
		if scenesDir == "" {
			return nil, fmt.Errorf("%w: %q (no scenes directory)", ErrUnknownScene, id)
		}
		path := filepath.Join(scenesDir, filepath.Base(strings.TrimPrefix(id, "json:"))+".json")
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
		}
		return Load(path)
	case strings.HasSuffix(id, ".json"):
		return Load(id)
	default:
		return NewBuiltinScene(id)
	}
}

// titleCase converts a filename-style string to title case
// e.g., "small-room" -> "Small Room"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
