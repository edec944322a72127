package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a preset name is not registered
var ErrUnknownScene = errors.New("scene: unknown scene")

// Info describes a scene that can be rendered
type Info struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Type        string `json:"type"`     // "builtin" or "file"
	FilePath    string `json:"filePath"` // Scene file path (file type only)
}

type preset struct {
	info  Info
	build func() *Scene
}

var presets = []preset{
	{Info{ID: "default", DisplayName: "Default", Description: "Planes, conductor and dielectric spheres, cube and point lights", Type: "builtin"}, NewDefaultScene},
	{Info{ID: "cornell", DisplayName: "Cornell Box", Description: "Closed diffuse box with a small area light", Type: "builtin"}, NewCornellScene},
	{Info{ID: "light-over-sphere", DisplayName: "Light Over Sphere", Description: "One emissive triangle above a diffuse sphere", Type: "builtin"}, NewLightOverSphereScene},
}

// Preset builds the built-in scene with the given id
func Preset(id string) (*Scene, error) {
	for _, p := range presets {
		if p.info.ID == id {
			return p.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// ListPresets returns the built-in scenes
func ListPresets() []Info {
	infos := make([]Info, len(presets))
	for i, p := range presets {
		infos[i] = p.info
	}
	return infos
}

// ListSceneFiles scans dir for *.json scene files. A missing directory yields no scenes.
func ListSceneFiles(dir string) ([]Info, error) {
	if _, err := os.Stat(dir); err != nil {
		return []Info{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]Info, 0, len(files))
	for _, path := range files {
		info, err := readSceneFileInfo(path)
		if err != nil {
			logger.Warningf("failed to read metadata for %s: %v", path, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

func readSceneFileInfo(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Info{}, err
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	display := header.Name
	if display == "" {
		display = id
	}
	return Info{
		ID:          "file:" + id,
		DisplayName: display,
		Description: header.Description,
		Type:        "file",
		FilePath:    path,
	}, nil
}
