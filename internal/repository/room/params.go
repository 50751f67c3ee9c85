package room

type UpdateTaskParams struct {
	RoomId string     `json:"room_id"`
	TaskId string     `json:"task_id"`
	Status TaskStatus `json:"status"`
	Client string     `json:"client"`
}

type AppendFrameLogParams struct {
	RoomId string        `json:"room_id"`
	Entry  FrameLogEntry `json:"entry"`
}
