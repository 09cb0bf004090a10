package room

type Room struct {
	Id        string `redis:"-"`
	OwnerId   string `redis:"owner_id"`
	CreatedAt int64  `redis:"created_at"`
}

type SetRoomParams struct {
	RoomId    string
	OwnerId   string
	CreatedAt int64
}

type ModParams struct {
	RoomId string
	UserId string
}
