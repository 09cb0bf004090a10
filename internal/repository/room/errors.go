package room

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomAlreadyExists    = errors.New("room already exists")
	ErrPlaylistItemNotFound = errors.New("playlist item not found")
	ErrModNotFound          = errors.New("mod not found")
)
