// Package chat handles chat-message-created events for direct and group
// threads under apps/{appId}/chats/{chatId}/messages/{messageId}.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campuschat/notification-service/internal/application/audience"
	"github.com/campuschat/notification-service/internal/application/dispatch"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/campuschat/notification-service/internal/pkg/payload"
	"github.com/campuschat/notification-service/internal/trigger"
	"github.com/rs/zerolog"
)

type messageStore interface {
	Get(ctx context.Context, appID, messageID string) (*domain.ChatMessage, error)
}

type Service interface {
	Handle(ctx context.Context, ev trigger.Event) error
}

type ServiceDeps struct {
	Audience   audience.Resolver
	Dispatcher dispatch.Service
	Repo       messageStore
}

type service struct {
	audience   audience.Resolver
	dispatcher dispatch.Service
	repo       messageStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		audience:   deps.Audience,
		dispatcher: deps.Dispatcher,
		repo:       deps.Repo,
	}
}

func (s *service) Handle(ctx context.Context, ev trigger.Event) error {
	log := zerolog.Ctx(ctx)
	appID := ev.Params["appId"]
	chatID := ev.Params["chatId"]
	messageID := ev.Params["messageId"]

	m, err := s.load(ctx, appID, messageID, ev.Data)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("chat message document missing, skipping")
			return nil
		}
		return err
	}
	if m.AppID == "" {
		m.AppID = appID
	}

	aud, err := s.audience.ForChatMessage(ctx, chatID, m)
	if err != nil {
		return err
	}
	if aud == nil || len(aud.Tokens) == 0 {
		log.Info().Msg("no recipients for chat message")
		return nil
	}

	title := payload.ChatTitle
	if aud.Group && m.ChatName != "" {
		title = "💬 " + m.ChatName
	}

	data := map[string]any{
		"type":       "chat",
		"app_id":     m.AppID,
		"chat_id":    chatID,
		"message_id": messageID,
		"sender_id":  m.SenderID,
		"screen":     "chat",
	}
	n := domain.Notification{
		Title: title,
		Body:  payload.ChatBody(aud.SenderName, m.Text),
	}

	s.dispatcher.SendMulticast(ctx, aud.Tokens, payload.Stringify(data), n)
	return nil
}

func (s *service) load(ctx context.Context, appID, messageID string, data json.RawMessage) (*domain.ChatMessage, error) {
	if len(data) > 0 {
		m := &domain.ChatMessage{}
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("decode message %s: %w", messageID, domain.ErrBadRequest)
		}
		m.MessageID = messageID
		return m, nil
	}
	m, err := s.repo.Get(ctx, appID, messageID)
	if err != nil {
		return nil, err
	}
	m.MessageID = messageID
	return m, nil
}
