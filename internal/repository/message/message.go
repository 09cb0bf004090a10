package message

import "time"

type Message struct {
	Id      string    `json:"id"`
	RoomId  string    `json:"room_id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}
