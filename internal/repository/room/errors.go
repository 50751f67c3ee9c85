package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTxRetriesExceeded = errors.New("transaction retries exceeded")
)
