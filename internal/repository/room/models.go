package room

import "time"

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusTriggered Status = "triggered"
	StatusRendering Status = "rendering"
)

type TaskStatus string

const (
	TaskStatusTriggered TaskStatus = "triggered"
	TaskStatusRendering TaskStatus = "rendering"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusFailed    TaskStatus = "failed"
)

type Member struct {
	Id    string `json:"id"`
	Order int    `json:"order"`
}

type RenderSettings struct {
	StartFrame           int    `json:"start_frame"`
	EndFrame             int    `json:"end_frame"`
	ResolutionX          int    `json:"resolution_x"`
	ResolutionY          int    `json:"resolution_y"`
	ResolutionPercentage int    `json:"resolution_percentage"`
	FileFormat           string `json:"file_format"`
	Renderer             string `json:"renderer"`
}

type BlenderFile struct {
	FileName       string         `json:"file_name"`
	UploadOrder    int            `json:"upload_order"`
	RenderSettings RenderSettings `json:"render_settings"`
}

type Room struct {
	Id           string        `json:"room_id"`
	CreateTime   time.Time     `json:"create_time"`
	Status       Status        `json:"status"`
	Members      []Member      `json:"members"`
	BlenderFiles []BlenderFile `json:"blender_files"`
}

type Task struct {
	Id         string     `json:"id"`
	FileName   string     `json:"file_name"`
	StartFrame int        `json:"start_frame"`
	EndFrame   int        `json:"end_frame"`
	Status     TaskStatus `json:"status"`
	Client     string     `json:"client"`
}

type FrameLogEntry struct {
	Frame     int    `json:"frame"`
	TaskId    string `json:"task_id"`
	Client    string `json:"client"`
	BlendFile string `json:"blend_file"`
}
