package room

import (
	"context"

	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/message"
)

type PostMessageParams struct {
	RoomId  string
	Sender  domain.User
	Content string
}

// PostMessage adds a chat message to the room and archives it. Messages from
// absent or muted users are dropped.
func (s *service) PostMessage(ctx context.Context, params *PostMessageParams) error {
	var (
		msg    domain.Message
		posted bool
	)
	if err := s.call(ctx, params.RoomId, func(r *domain.Room) {
		msg, posted = r.PostMessage(params.Sender.Id, params.Content)
	}); err != nil {
		return err
	}

	if !posted {
		return nil
	}

	if err := s.archive.Append(message.Message{
		Id:      msg.Id,
		RoomId:  params.RoomId,
		Author:  msg.Author,
		Content: msg.Content,
		Time:    msg.Time,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to archive message", "error", err)
	}

	return nil
}
