package domain

import "github.com/google/uuid"

const DefaultAvatarURL = "/static/avatars/newfoal.png"

type User struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (u User) Key() string {
	return u.Id
}

func NewAnonymousUser(username string) User {
	return User{
		Id:        uuid.NewString(),
		Username:  username,
		AvatarURL: DefaultAvatarURL,
	}
}

// Member is a present user together with their roles in a room.
type Member struct {
	User
	IsOwner bool `json:"is_owner"`
	IsMod   bool `json:"is_mod"`
	IsMuted bool `json:"is_muted"`
}
