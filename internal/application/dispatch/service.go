// Package dispatch is the notification dispatcher: the single boundary
// between the fan-out logic and the push transport. Transport failures stop
// here — they are logged and swallowed, never surfaced to the triggering
// event handler.
package dispatch

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/rs/zerolog"
)

// multicastLimit is the transport's per-call token cap; larger audiences are
// sent in chunks.
const multicastLimit = 500

// Sender is the minimal surface the dispatcher requires from the push
// transport (satisfied by *messaging.Client).
type Sender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Service interface {
	// SendMulticast delivers one payload to many device tokens. Returns nil
	// on an empty token list (no transport call) and on transport failure.
	SendMulticast(ctx context.Context, tokens []string, data map[string]string, n domain.Notification) *domain.DeliveryResult
	// SendSingle delivers to one device token, returning the transport
	// message id, or "" on a missing token or transport failure.
	SendSingle(ctx context.Context, token string, data map[string]string, n domain.Notification) string
}

type service struct {
	sender Sender
	log    zerolog.Logger
}

func NewService(sender Sender, log zerolog.Logger) Service {
	return &service{sender: sender, log: log}
}

func (s *service) SendMulticast(ctx context.Context, tokens []string, data map[string]string, n domain.Notification) *domain.DeliveryResult {
	tokens = dedupeTokens(tokens)
	if len(tokens) == 0 {
		s.log.Info().Msg("no tokens to send")
		return nil
	}

	result := &domain.DeliveryResult{}
	for start := 0; start < len(tokens); start += multicastLimit {
		end := min(start+multicastLimit, len(tokens))
		resp, err := s.sender.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: tokens[start:end],
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: data,
		})
		if err != nil {
			s.log.Error().Err(err).Int("tokens", len(tokens)).Msg("error sending multicast")
			return nil
		}
		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
	}

	s.log.Info().
		Int("success", result.SuccessCount).
		Int("failed", result.FailureCount).
		Msg("multicast sent")
	return result
}

func (s *service) SendSingle(ctx context.Context, token string, data map[string]string, n domain.Notification) string {
	if token == "" {
		s.log.Info().Msg("no token to send")
		return ""
	}

	id, err := s.sender.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("error sending notification")
		return ""
	}
	s.log.Info().Str("message_id", id).Msg("notification sent")
	return id
}

// dedupeTokens drops empty tokens and collapses duplicates while preserving
// first-seen order. A token reachable via two filter paths must not receive
// the payload twice.
func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
