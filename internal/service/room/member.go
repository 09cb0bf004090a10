package room

import (
	"context"

	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/room"
)

type SetRoleParams struct {
	RoomId   string
	Sender   domain.User
	TargetId string
	Enabled  bool
}

func (s *service) SetMute(ctx context.Context, params *SetRoleParams) error {
	return s.call(ctx, params.RoomId, func(r *domain.Room) {
		r.SetMute(params.Sender.Id, params.TargetId, params.Enabled)
	})
}

// SetMod changes moderator status and persists the change when it applied.
func (s *service) SetMod(ctx context.Context, params *SetRoleParams) error {
	var changed bool
	if err := s.call(ctx, params.RoomId, func(r *domain.Room) {
		changed = r.SetMod(params.Sender.Id, params.TargetId, params.Enabled)
	}); err != nil {
		return err
	}

	if !changed {
		return nil
	}

	mod := &room.ModParams{RoomId: params.RoomId, UserId: params.TargetId}
	var err error
	if params.Enabled {
		err = s.roomRepo.AddMod(ctx, mod)
	} else {
		err = s.roomRepo.RemoveMod(ctx, mod)
	}

	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist mod change", "error", err)
	}

	return nil
}
