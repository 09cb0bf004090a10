package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/room"
	"github.com/sharetube/watchroom/internal/repository/user"
)

// Bootstrap loads every stored room and starts its loop. When storage holds
// no rooms a default one owned by the configured owner account is created.
func (s *service) Bootstrap(ctx context.Context) error {
	owner, err := s.ensureOwner(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure owner: %w", err)
	}

	ids, err := s.roomRepo.GetRoomIds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get room ids: %w", err)
	}

	if len(ids) == 0 {
		roomId := s.cfg.DefaultRoomId
		if roomId == "" {
			roomId = uuid.NewString()
		}

		if err := s.createRoom(ctx, roomId, owner); err != nil {
			return fmt.Errorf("failed to create default room: %w", err)
		}

		ids = []string{roomId}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	for _, id := range ids {
		r, err := s.loadRoom(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load room", "room_id", id, "error", err)
			continue
		}

		s.mu.Lock()
		s.rooms[id] = r
		if s.defaultRoomId == "" || id == s.cfg.DefaultRoomId {
			s.defaultRoomId = id
		}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			r.Run(runCtx)
		}()
	}

	if len(s.RoomIds()) == 0 {
		return ErrRoomNotFound
	}

	s.logger.InfoContext(ctx, "rooms loaded", "rooms", s.RoomIds(), "default_room_id", s.DefaultRoomId())
	return nil
}

func (s *service) ensureOwner(ctx context.Context) (user.User, error) {
	owner, err := s.userRepo.GetUserByUsername(ctx, s.cfg.OwnerUsername)
	if err == nil {
		return owner, nil
	}

	if !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, err
	}

	hash, err := hashPassword(s.cfg.OwnerPassword)
	if err != nil {
		return user.User{}, err
	}

	params := user.CreateUserParams{
		Id:           uuid.NewString(),
		Username:     s.cfg.OwnerUsername,
		PasswordHash: hash,
		AvatarURL:    domain.DefaultAvatarURL,
	}
	if err := s.userRepo.CreateUser(ctx, &params); err != nil {
		return user.User{}, err
	}

	s.logger.InfoContext(ctx, "owner account created", "username", params.Username)
	return s.userRepo.GetUserById(ctx, params.Id)
}

func (s *service) createRoom(ctx context.Context, roomId string, owner user.User) error {
	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomId:    roomId,
		OwnerId:   owner.Id,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		return err
	}

	return s.roomRepo.AddMod(ctx, &room.ModParams{RoomId: roomId, UserId: owner.Id})
}

// loadRoom rebuilds a room from storage before its loop starts, so it may
// touch the room directly.
func (s *service) loadRoom(ctx context.Context, roomId string) (*domain.Room, error) {
	stored, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetUserById(ctx, stored.OwnerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	r := domain.NewRoom(roomId, toDomainUser(owner), s.cfg.Room)

	modIds, err := s.roomRepo.GetModIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get mods: %w", err)
	}

	mods := make([]domain.User, 0, len(modIds))
	for _, id := range modIds {
		u, err := s.userRepo.GetUserById(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unknown mod", "room_id", roomId, "user_id", id, "error", err)
			continue
		}
		mods = append(mods, toDomainUser(u))
	}
	r.LoadMods(mods)

	msgs, err := s.archive.Recent(roomId, s.cfg.CatchupMessages)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read message archive", "room_id", roomId, "error", err)
	} else {
		restored := make([]domain.Message, 0, len(msgs))
		for _, m := range msgs {
			restored = append(restored, domain.Message{
				Id:       m.Id,
				Author:   m.Author,
				Content:  m.Content,
				Time:     m.Time,
				Rendered: true,
			})
		}
		r.RestoreMessages(restored)
	}

	items, err := s.roomRepo.GetPlaylistItems(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	playlist := make([]*domain.MediaItem, 0, len(items))
	for _, it := range items {
		playlist = append(playlist, domain.NewMediaItem(domain.MediaItem{
			Id:        it.Id,
			URL:       it.URL,
			Duration:  it.Duration,
			Title:     it.Title,
			Uploader:  it.Uploader,
			Thumbnail: it.Thumbnail,
		}))
	}
	r.LoadPlaylist(playlist)

	return r, nil
}

func toDomainUser(u user.User) domain.User {
	avatar := u.AvatarURL
	if avatar == "" {
		avatar = domain.DefaultAvatarURL
	}

	return domain.User{Id: u.Id, Username: u.Username, AvatarURL: avatar}
}
