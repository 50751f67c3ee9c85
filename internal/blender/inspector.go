package blender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/renderroom/server/internal/repository/room"
)

const (
	settingsStartMarker = "RENDER_SETTINGS_START"
	settingsEndMarker   = "RENDER_SETTINGS_END"
)

// inspectScript runs inside Blender and prints the scene's render settings
// between markers so they can be picked out of Blender's noisy stdout.
const inspectScript = `
import bpy
import json

for addon in bpy.context.preferences.addons.keys():
    bpy.ops.preferences.addon_disable(module=addon)

scene = bpy.context.scene
render = scene.render

settings = {
    "renderer": render.engine,
    "start_frame": scene.frame_start,
    "end_frame": scene.frame_end,
    "resolution_x": render.resolution_x,
    "resolution_y": render.resolution_y,
    "resolution_percentage": render.resolution_percentage,
    "file_format": render.image_settings.file_format
}

print("` + settingsStartMarker + `")
print(json.dumps(settings))
print("` + settingsEndMarker + `")
`

type Inspector struct {
	blenderPath string
	logger      *slog.Logger
}

func NewInspector(blenderPath string, logger *slog.Logger) *Inspector {
	return &Inspector{
		blenderPath: blenderPath,
		logger:      logger,
	}
}

// Inspect opens the blend file headless and returns its render settings.
func (i Inspector) Inspect(ctx context.Context, blendPath string) (room.RenderSettings, error) {
	cmd := exec.CommandContext(ctx, i.blenderPath, "-b", blendPath, "--python-expr", inspectScript)

	output, err := cmd.Output()
	if err != nil {
		i.logger.ErrorContext(ctx, "blender inspection failed", "blend_path", blendPath, "error", err)
		return room.RenderSettings{}, fmt.Errorf("failed to inspect %s: %w", blendPath, err)
	}

	return parseSettings(string(output))
}

func parseSettings(output string) (room.RenderSettings, error) {
	start := strings.Index(output, settingsStartMarker)
	end := strings.Index(output, settingsEndMarker)
	if start == -1 || end == -1 || end < start {
		return room.RenderSettings{}, fmt.Errorf("render settings markers not found in blender output")
	}

	raw := strings.TrimSpace(output[start+len(settingsStartMarker) : end])

	var settings room.RenderSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return room.RenderSettings{}, fmt.Errorf("failed to parse render settings: %w", err)
	}

	return settings, nil
}
