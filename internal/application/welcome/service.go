// Package welcome sends the one-off onboarding notification when a user
// completes their profile.
package welcome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campuschat/notification-service/internal/application/dispatch"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/campuschat/notification-service/internal/pkg/payload"
	"github.com/campuschat/notification-service/internal/trigger"
	"github.com/rs/zerolog"
)

type userStore interface {
	Get(ctx context.Context, appID, userID string) (*domain.User, error)
}

type Service interface {
	Handle(ctx context.Context, ev trigger.Event) error
}

type ServiceDeps struct {
	Dispatcher dispatch.Service
	Repo       userStore
}

type service struct {
	dispatcher dispatch.Service
	repo       userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{dispatcher: deps.Dispatcher, repo: deps.Repo}
}

func (s *service) Handle(ctx context.Context, ev trigger.Event) error {
	log := zerolog.Ctx(ctx)
	userID := ev.Params["userId"]

	u, err := s.load(ctx, userID, ev.Data)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("user document missing, skipping")
			return nil
		}
		return err
	}

	if !u.ProfileCompleted || !u.HasToken() {
		log.Info().Msg("profile not completed or no device token")
		return nil
	}

	// On update events the previous snapshot tells us whether this is the
	// false→true transition; anything else was already welcomed.
	if len(ev.OldData) > 0 {
		var old domain.User
		if err := json.Unmarshal(ev.OldData, &old); err == nil && old.ProfileCompleted {
			log.Info().Msg("profile was already completed, skipping welcome")
			return nil
		}
	}

	name := u.Name
	if name == "" {
		name = "Student"
	}
	course := u.Course
	if course == "" {
		course = "the app"
	}
	log.Info().Str("name", name).Str("course", u.Course).Msg("sending welcome notification")

	data := map[string]any{
		"type":    "welcome",
		"user_id": userID,
		"screen":  "home",
	}
	n := domain.Notification{
		Title: payload.WelcomeTitle,
		Body:  fmt.Sprintf("Hi %s! Welcome to %s. Get started with your academic journey.", name, course),
	}

	s.dispatcher.SendSingle(ctx, u.FCMToken, payload.Stringify(data), n)
	return nil
}

func (s *service) load(ctx context.Context, userID string, data json.RawMessage) (*domain.User, error) {
	if len(data) > 0 {
		u := &domain.User{}
		if err := json.Unmarshal(data, u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", userID, domain.ErrBadRequest)
		}
		u.UserID = userID
		return u, nil
	}
	u, err := s.repo.Get(ctx, "", userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}
