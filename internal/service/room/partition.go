package room

import (
	"fmt"

	repo "github.com/renderroom/server/internal/repository/room"
)

// framesPerTask is the fixed chunk size a file's frame range is split into.
const framesPerTask = 10

// partitionTasks splits every file's frame range into contiguous chunks of
// framesPerTask frames (the last chunk may be shorter) and assigns chunks to
// members round-robin in join order. The rotation counter is shared across
// files, not reset per file, so assignment stays reproducible from the task
// creation order alone.
func partitionTasks(roomId string, members []repo.Member, files []repo.BlenderFile) []repo.Task {
	tasks := []repo.Task{}
	if len(members) == 0 {
		return tasks
	}

	clientIndex := 0
	for _, file := range files {
		startFrame := file.RenderSettings.StartFrame
		endFrame := file.RenderSettings.EndFrame

		for start := startFrame; start <= endFrame; start += framesPerTask {
			end := start + framesPerTask - 1
			if end > endFrame {
				end = endFrame
			}

			tasks = append(tasks, repo.Task{
				Id:         fmt.Sprintf("%s_%s_%d", roomId, file.FileName, start),
				FileName:   file.FileName,
				StartFrame: start,
				EndFrame:   end,
				Status:     repo.TaskStatusTriggered,
				Client:     members[clientIndex%len(members)].Id,
			})
			clientIndex++
		}
	}

	return tasks
}
