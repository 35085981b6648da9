// Package announce handles announcement-created events: resolve the
// audience, shape the payload, dispatch once.
package announce

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

type announcementStore interface {
	Get(ctx context.Context, announcementID string) (*domain.Announcement, error)
}

type Service interface {
	Handle(ctx context.Context, ev trigger.Event) error
}

// Options pins the per-call-site payload behaviors. The flat deployment
// matches category titles case-sensitively with the long body; the
// tenant-scoped deployment folds case and uses the compact body.
type Options struct {
	FoldTitleCase bool
	CompactBody   bool
}

type ServiceDeps struct {
	Audience   audience.Resolver
	Dispatcher dispatch.Service
	Repo       announcementStore
	Options    Options
}

type service struct {
	audience   audience.Resolver
	dispatcher dispatch.Service
	repo       announcementStore
	opts       Options
}

func NewService(deps ServiceDeps) Service {
	return &service{
		audience:   deps.Audience,
		dispatcher: deps.Dispatcher,
		repo:       deps.Repo,
		opts:       deps.Options,
	}
}

func (s *service) Handle(ctx context.Context, ev trigger.Event) error {
	log := zerolog.Ctx(ctx)
	announcementID := ev.Params["announcementId"]

	a, err := s.load(ctx, announcementID, ev.Data)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("announcement document missing, skipping")
			return nil
		}
		return err
	}
	if a.AppID == "" {
		a.AppID = ev.Params["appId"]
	}
	log.Info().Str("title", a.Title).Str("category", a.Category).Msg("new announcement")

	tokens, err := s.audience.ForAnnouncement(ctx, a)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		log.Info().Msg("no users match the announcement filters")
		return nil
	}

	var data map[string]any
	var n domain.Notification
	if a.IsGeneral() {
		data = map[string]any{
			"type":            domain.CategoryGeneral,
			"announcement_id": announcementID,
			"is_general":      true,
		}
		n = domain.Notification{
			Title: payload.GeneralTitle,
			Body:  payload.FirstLine(a.Title),
		}
	} else {
		data = map[string]any{
			"type":            a.Category,
			"announcement_id": announcementID,
			"unit_code":       a.UnitCode,
			"year":            a.Year,
			"semester":        a.Semester,
		}
		body := payload.Body(a)
		if s.opts.CompactBody {
			body = payload.CompactBody(a)
		}
		n = domain.Notification{
			Title: payload.Title(a.Category, payload.TitleOptions{FoldCase: s.opts.FoldTitleCase}),
			Body:  body,
		}
	}

	s.dispatcher.SendMulticast(ctx, tokens, payload.Stringify(data), n)
	return nil
}

// load decodes the event snapshot, or fetches the document for skinny events
// that carry only a path.
func (s *service) load(ctx context.Context, announcementID string, data json.RawMessage) (*domain.Announcement, error) {
	if len(data) > 0 {
		a := &domain.Announcement{}
		if err := json.Unmarshal(data, a); err != nil {
			return nil, fmt.Errorf("decode announcement %s: %w", announcementID, domain.ErrBadRequest)
		}
		a.AnnouncementID = announcementID
		return a, nil
	}
	a, err := s.repo.Get(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	a.AnnouncementID = announcementID
	return a, nil
}
