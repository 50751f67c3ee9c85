package blender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderroom/server/internal/repository/room"
)

func TestParseSettings(t *testing.T) {
	output := `Blender 4.0.2 (hash 9be62e85b727 built 2023-12-05 07:41:38)
Read blend: /tmp/rooms/123456/queue/scene.blend
RENDER_SETTINGS_START
{"renderer": "CYCLES", "start_frame": 1, "end_frame": 250, "resolution_x": 1920, "resolution_y": 1080, "resolution_percentage": 100, "file_format": "PNG"}
RENDER_SETTINGS_END

Blender quit`

	settings, err := parseSettings(output)
	require.NoError(t, err)
	assert.Equal(t, room.RenderSettings{
		Renderer:             "CYCLES",
		StartFrame:           1,
		EndFrame:             250,
		ResolutionX:          1920,
		ResolutionY:          1080,
		ResolutionPercentage: 100,
		FileFormat:           "PNG",
	}, settings)
}

func TestParseSettingsMissingMarkers(t *testing.T) {
	for name, output := range map[string]string{
		"empty":      "",
		"no markers": "Blender quit",
		"only start": "RENDER_SETTINGS_START\n{}",
		"only end":   "{}\nRENDER_SETTINGS_END",
		"reversed":   "RENDER_SETTINGS_END\n{}\nRENDER_SETTINGS_START",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseSettings(output)
			assert.ErrorContains(t, err, "markers not found")
		})
	}
}

func TestParseSettingsInvalidJSON(t *testing.T) {
	_, err := parseSettings("RENDER_SETTINGS_START\nnot json\nRENDER_SETTINGS_END")
	assert.ErrorContains(t, err, "failed to parse render settings")
}
