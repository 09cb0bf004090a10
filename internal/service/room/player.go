package room

import (
	"context"

	"github.com/sharetube/watchroom/internal/domain"
)

type UpdatePlayerParams struct {
	RoomId string
	Sender domain.User
	Time   *float64
	State  *string
}

func (s *service) UpdatePlayer(ctx context.Context, params *UpdatePlayerParams) error {
	return s.call(ctx, params.RoomId, func(r *domain.Room) {
		if params.Time != nil {
			r.SeekTo(params.Sender, *params.Time)
		}

		if params.State != nil {
			r.SetPlayState(params.Sender, domain.PlayerState(*params.State))
		}
	})
}
