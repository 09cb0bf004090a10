package room

import (
	"context"
	"fmt"

	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/room"
)

type VideoParams struct {
	Id        string
	URL       string
	Duration  int
	Title     string
	Uploader  string
	Thumbnail string
}

type AddVideoParams struct {
	RoomId string
	Sender domain.User
	Video  VideoParams
}

// newMediaItem builds an item from client data, filling missing metadata
// from the video catalog. Items without a known duration are rejected.
func (s *service) newMediaItem(ctx context.Context, v VideoParams) (*domain.MediaItem, error) {
	if len(v.URL) != domain.VideoURLLength {
		return nil, fmt.Errorf("%w: url must be %d characters", ErrInvalidVideo, domain.VideoURLLength)
	}

	if v.Title == "" || v.Thumbnail == "" || v.Duration <= 0 {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.VideoDataTimeout)
		data, err := s.videoData.Get(fetchCtx, v.URL)
		cancel()

		if err != nil {
			s.logger.InfoContext(ctx, "failed to get video data", "url", v.URL, "error", err)
		} else {
			if v.Title == "" {
				v.Title = data.Title
			}
			if v.Uploader == "" {
				v.Uploader = data.AuthorName
			}
			if v.Thumbnail == "" {
				v.Thumbnail = data.ThumbnailUrl
			}
			if v.Duration <= 0 {
				v.Duration = data.Duration
			}
		}
	}

	if v.Duration <= 0 {
		return nil, fmt.Errorf("%w: unknown duration", ErrInvalidVideo)
	}

	return domain.NewMediaItem(domain.MediaItem{
		URL:       v.URL,
		Duration:  v.Duration,
		Title:     v.Title,
		Uploader:  v.Uploader,
		Thumbnail: v.Thumbnail,
	}), nil
}

func (s *service) Enqueue(ctx context.Context, params *AddVideoParams) error {
	if _, err := s.GetRoom(params.RoomId); err != nil {
		return err
	}

	item, err := s.newMediaItem(ctx, params.Video)
	if err != nil {
		return err
	}

	return s.call(ctx, params.RoomId, func(r *domain.Room) {
		r.Enqueue(params.Sender, item)
	})
}

// AddToPlaylist persists the item before it becomes visible in the room.
func (s *service) AddToPlaylist(ctx context.Context, params *AddVideoParams) error {
	if _, err := s.GetRoom(params.RoomId); err != nil {
		return err
	}

	item, err := s.newMediaItem(ctx, params.Video)
	if err != nil {
		return err
	}

	if err := s.roomRepo.SetPlaylistItem(ctx, &room.SetPlaylistItemParams{
		RoomId:    params.RoomId,
		ItemId:    item.Id,
		URL:       item.URL,
		Duration:  item.Duration,
		Title:     item.Title,
		Uploader:  item.Uploader,
		Thumbnail: item.Thumbnail,
	}); err != nil {
		return fmt.Errorf("failed to persist playlist item: %w", err)
	}

	return s.call(ctx, params.RoomId, func(r *domain.Room) {
		r.AddToPlaylist(params.Sender, item)
	})
}

type VideoRefParams struct {
	RoomId  string
	Sender  domain.User
	VideoId string
}

func (s *service) RemoveVideo(ctx context.Context, params *VideoRefParams) error {
	var fromPlaylist bool
	if err := s.call(ctx, params.RoomId, func(r *domain.Room) {
		_, fromPlaylist = r.RemoveVideo(params.Sender, params.VideoId)
	}); err != nil {
		return err
	}

	if fromPlaylist {
		if err := s.roomRepo.RemovePlaylistItem(ctx, &room.RemovePlaylistItemParams{
			RoomId: params.RoomId,
			ItemId: params.VideoId,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to remove persisted playlist item", "error", err)
		}
	}

	return nil
}

// RequestPlay plays an item already in the room by id, or a new item built
// from the video data.
func (s *service) RequestPlay(ctx context.Context, params *AddVideoParams) error {
	var played bool
	if params.Video.Id != "" {
		if err := s.call(ctx, params.RoomId, func(r *domain.Room) {
			if item, ok := r.Lookup(params.Video.Id); ok {
				played = r.RequestPlay(params.Sender, item)
			}
		}); err != nil {
			return err
		}
	}

	if played || params.Video.URL == "" {
		return nil
	}

	if _, err := s.GetRoom(params.RoomId); err != nil {
		return err
	}

	item, err := s.newMediaItem(ctx, params.Video)
	if err != nil {
		return err
	}

	return s.call(ctx, params.RoomId, func(r *domain.Room) {
		r.RequestPlay(params.Sender, item)
	})
}
