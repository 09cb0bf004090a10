package redis

import (
	"context"
	"log/slog"
	"slices"

	"github.com/sharetube/watchroom/internal/repository/room"
)

const roomsKey = "rooms"

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getModsKey(roomId string) string {
	return "room:" + roomId + ":mods"
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	funcName := "room.redis.SetRoom"
	slog.DebugContext(ctx, funcName, "params", params)

	pipe := r.rc.TxPipeline()
	pipe.SAdd(ctx, roomsKey, params.RoomId)
	if err := r.HSetStruct(ctx, pipe, r.getRoomKey(params.RoomId), room.Room{
		OwnerId:   params.OwnerId,
		CreatedAt: params.CreatedAt,
	}); err != nil {
		return err
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	var res room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Scan(&res); err != nil {
		return room.Room{}, err
	}

	if res.OwnerId == "" {
		return room.Room{}, room.ErrRoomNotFound
	}

	res.Id = roomId
	return res, nil
}

func (r repo) GetRoomIds(ctx context.Context) ([]string, error) {
	ids, err := r.rc.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

func (r repo) AddMod(ctx context.Context, params *room.ModParams) error {
	return r.rc.SAdd(ctx, r.getModsKey(params.RoomId), params.UserId).Err()
}

func (r repo) RemoveMod(ctx context.Context, params *room.ModParams) error {
	res, err := r.rc.SRem(ctx, r.getModsKey(params.RoomId), params.UserId).Result()
	if err != nil {
		return err
	}

	if res == 0 {
		return room.ErrModNotFound
	}

	return nil
}

func (r repo) GetModIds(ctx context.Context, roomId string) ([]string, error) {
	ids, err := r.rc.SMembers(ctx, r.getModsKey(roomId)).Result()
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}
