package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/service"
)

// Run consumes queued messages with a bounded worker pool until the channel
// closes or the context is canceled. Each message is handled by exactly one
// worker; there is no shared mutable state between messages beyond storage
// itself.
//
// A processing error is logged and the message dropped from this process;
// the transport redelivers unacknowledged messages, and the idempotency
// guard makes redelivery of a half-processed message safe.
func (p *Pipeline) Run(ctx context.Context, messages <-chan Message, responder service.Responder) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for {
		select {
		case <-ctx.Done():
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				result, err := p.Process(ctx, msg)
				if err != nil {
					common.LogError(err, "message processing failed, leaving for redelivery", common.Fields{
						"user_id":    msg.UserID,
						"message_id": msg.MessageID,
					})
					return nil
				}

				if p.cfg.Mode.UserVisible() || result.Legacy {
					if err := responder.Respond(ctx, msg.UserID, msg.MessageID, result.Reply); err != nil {
						slog.Warn("Failed to deliver reply",
							"user_id", msg.UserID,
							"message_id", msg.MessageID,
							"error", err)
					}
				}
				return nil
			})
		}
	}
}
