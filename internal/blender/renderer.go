package blender

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type Renderer struct {
	blenderPath string
	logger      *slog.Logger
}

func NewRenderer(blenderPath string, logger *slog.Logger) *Renderer {
	return &Renderer{
		blenderPath: blenderPath,
		logger:      logger,
	}
}

// Render renders [startFrame, endFrame] of the blend file into outputDir as
// frame_NNNN.png and returns the highest frame number actually produced.
// When nothing was rendered it returns startFrame-1 with no error; the
// caller decides whether a partial result counts as failure.
func (r Renderer) Render(ctx context.Context, blendPath, outputDir string, startFrame, endFrame int) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, r.blenderPath,
		"-b", blendPath,
		"-o", filepath.Join(outputDir, "frame_####"),
		"-s", strconv.Itoa(startFrame),
		"-e", strconv.Itoa(endFrame),
		"-a",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.ErrorContext(ctx, "blender render failed",
			"blend_path", blendPath,
			"start_frame", startFrame,
			"end_frame", endFrame,
			"output", string(output),
			"error", err,
		)
		return 0, fmt.Errorf("failed to render %s: %w", blendPath, err)
	}

	highest, err := highestRenderedFrame(outputDir)
	if err != nil {
		return 0, err
	}
	if highest == -1 {
		r.logger.WarnContext(ctx, "no frames were rendered", "blend_path", blendPath)
		return startFrame - 1, nil
	}

	return highest, nil
}

func highestRenderedFrame(outputDir string) (int, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0, err
	}

	highest := -1
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "frame_") || !strings.HasSuffix(name, ".png") {
			continue
		}

		frame, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "frame_"), ".png"))
		if err != nil {
			continue
		}

		if frame > highest {
			highest = frame
		}
	}

	return highest, nil
}
