package room

type PlaylistItem struct {
	Id        string `redis:"-"`
	URL       string `redis:"url"`
	Duration  int    `redis:"duration"`
	Title     string `redis:"title"`
	Uploader  string `redis:"uploader"`
	Thumbnail string `redis:"thumbnail"`
}

type SetPlaylistItemParams struct {
	RoomId    string
	ItemId    string
	URL       string
	Duration  int
	Title     string
	Uploader  string
	Thumbnail string
}

type RemovePlaylistItemParams struct {
	RoomId string
	ItemId string
}
