package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchroom/internal/repository/room"
)

func (r repo) getPlaylistKey(roomId string) string {
	return "room:" + roomId + ":playlist"
}

func (r repo) getPlaylistItemKey(roomId, itemId string) string {
	return "room:" + roomId + ":video:" + itemId
}

// SetPlaylistItem stores the item and appends it to the end of the room's
// playlist order.
func (r repo) SetPlaylistItem(ctx context.Context, params *room.SetPlaylistItemParams) error {
	funcName := "room.redis.SetPlaylistItem"
	slog.DebugContext(ctx, funcName, "params", params)

	pipe := r.rc.TxPipeline()
	item := room.PlaylistItem{
		URL:       params.URL,
		Duration:  params.Duration,
		Title:     params.Title,
		Uploader:  params.Uploader,
		Thumbnail: params.Thumbnail,
	}
	if err := r.HSetStruct(ctx, pipe, r.getPlaylistItemKey(params.RoomId, params.ItemId), item); err != nil {
		return err
	}
	r.addWithIncrement(ctx, pipe, r.getPlaylistKey(params.RoomId), params.ItemId)

	if err := r.executePipe(ctx, pipe); err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return err
	}

	return nil
}

func (r repo) GetPlaylistItems(ctx context.Context, roomId string) ([]room.PlaylistItem, error) {
	ids, err := r.rc.ZRange(ctx, r.getPlaylistKey(roomId), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []room.PlaylistItem{}, nil
	}

	pipe := r.rc.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, r.getPlaylistItemKey(roomId, id)))
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		return nil, err
	}

	items := make([]room.PlaylistItem, 0, len(ids))
	for i, cmd := range cmds {
		var item room.PlaylistItem
		if err := cmd.Scan(&item); err != nil {
			return nil, err
		}

		// order entry without its hash
		if item.URL == "" {
			continue
		}

		item.Id = ids[i]
		items = append(items, item)
	}

	return items, nil
}

func (r repo) RemovePlaylistItem(ctx context.Context, params *room.RemovePlaylistItemParams) error {
	res, err := r.rc.ZRem(ctx, r.getPlaylistKey(params.RoomId), params.ItemId).Result()
	if err != nil {
		return err
	}

	if res == 0 {
		return room.ErrPlaylistItemNotFound
	}

	return r.rc.Del(ctx, r.getPlaylistItemKey(params.RoomId, params.ItemId)).Err()
}
