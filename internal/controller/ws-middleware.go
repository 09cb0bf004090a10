package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchroom/pkg/ctxlogger"
	"github.com/sharetube/watchroom/pkg/wsrouter"
)

func (c controller) wsRequestIdMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		ctx = ctxlogger.AppendCtx(ctx,
			slog.String("ws_request_id", c.generateTimeBasedId()),
			slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)),
		)
		return next(ctx, conn, payload)
	}
}

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		start := time.Now()
		err := next(ctx, conn, payload)
		c.logger.DebugContext(ctx, "ws request", "duration_ms", time.Since(start).Milliseconds(), "failed", err != nil)
		return err
	}
}
