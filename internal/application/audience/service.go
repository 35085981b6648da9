// Package audience computes the recipient token set for one triggering
// document. It is the only consumer of user queries; all filter semantics
// live here.
package audience

import (
	"context"
	"errors"
	"strings"

	"github.com/campuschat/notification-service/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultCampus applies when the author's campus is blank.
const DefaultCampus = "Main"

// UnknownSender is the display name used when the sender record is missing.
const UnknownSender = "Unknown User"

type userStore interface {
	Get(ctx context.Context, appID, userID string) (*domain.User, error)
	Query(ctx context.Context, appID string, f domain.UserFilters) ([]domain.User, error)
}

// Config collapses the flat and tenant-scoped notification schemas into one
// resolver. With TenantScoped set, every store access is scoped to the
// document's app id, falling back to DefaultAppID.
type Config struct {
	TenantScoped bool
	DefaultAppID string
}

// ChatAudience is the resolved recipient set for one chat message, handed
// directly to the dispatcher by the caller.
type ChatAudience struct {
	SenderName string
	Group      bool
	Tokens     []string
}

type Resolver interface {
	// ForAnnouncement returns the device tokens targeted by an announcement.
	// A nil, nil return means "send nothing" (missing author or no match).
	ForAnnouncement(ctx context.Context, a *domain.Announcement) ([]string, error)
	// ForChatMessage resolves the recipient tokens for a chat message.
	// A nil, nil return means "send nothing" (self-message or missing recipient).
	ForChatMessage(ctx context.Context, chatID string, m *domain.ChatMessage) (*ChatAudience, error)
}

type resolver struct {
	users userStore
	cfg   Config
	log   zerolog.Logger
}

func NewResolver(users userStore, cfg Config, log zerolog.Logger) Resolver {
	return &resolver{users: users, cfg: cfg, log: log}
}

// scope returns the tenant scope for a document-owned app id.
func (r *resolver) scope(appID string) string {
	if !r.cfg.TenantScoped {
		return ""
	}
	if appID != "" {
		return appID
	}
	return r.cfg.DefaultAppID
}

func (r *resolver) ForAnnouncement(ctx context.Context, a *domain.Announcement) ([]string, error) {
	appID := r.scope(a.AppID)

	// General announcements are an admin broadcast: every user in scope with
	// a token, no course/campus/school/department filtering.
	if a.IsGeneral() {
		users, err := r.users.Query(ctx, appID, domain.UserFilters{})
		if err != nil {
			return nil, err
		}
		var tokens []string
		for i := range users {
			if users[i].HasToken() {
				tokens = append(tokens, users[i].FCMToken)
			}
		}
		r.log.Info().Int("recipients", len(tokens)).Msg("general announcement audience")
		return tokens, nil
	}

	author, err := r.users.Get(ctx, appID, a.AuthorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Without the author there is no way to scope the audience;
			// sending nothing beats a mis-targeted broadcast.
			r.log.Warn().Str("author_id", a.AuthorID).Msg("author not found, skipping notification")
			return nil, nil
		}
		return nil, err
	}

	campus := author.Campus
	if strings.TrimSpace(campus) == "" {
		campus = DefaultCampus
	}

	filters := domain.UserFilters{
		Campus:       campus,
		RequireToken: true,
	}
	if author.Course != "" {
		filters.Course = author.Course
	}
	if a.HasTerm() {
		filters.Year = a.Year
		filters.Semester = a.Semester
	}

	candidates, err := r.users.Query(ctx, appID, filters)
	if err != nil {
		return nil, err
	}

	// Post-query filters the store cannot express: unit registration and
	// school/department alignment with the author.
	var tokens []string
	for i := range candidates {
		u := &candidates[i]
		if !u.HasToken() {
			continue
		}
		if a.UnitCode != "" && !u.RegisteredFor(a.UnitCode) {
			continue
		}
		if author.School != "" && u.School != author.School {
			continue
		}
		if author.Department != "" && u.Department != author.Department {
			continue
		}
		tokens = append(tokens, u.FCMToken)
	}
	r.log.Info().
		Str("category", a.Category).
		Int("candidates", len(candidates)).
		Int("recipients", len(tokens)).
		Msg("announcement audience resolved")
	return tokens, nil
}

func (r *resolver) ForChatMessage(ctx context.Context, chatID string, m *domain.ChatMessage) (*ChatAudience, error) {
	if m.SenderID == m.RecipientID {
		r.log.Info().Str("sender_id", m.SenderID).Msg("self-message, skipping notification")
		return nil, nil
	}

	appID := r.scope(m.AppID)
	group := domain.IsGroupChat(chatID)

	senderName := UnknownSender
	sender, err := r.users.Get(ctx, appID, m.SenderID)
	switch {
	case err == nil && sender.Name != "":
		senderName = sender.Name
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	aud := &ChatAudience{SenderName: senderName, Group: group}

	if !group {
		recipient, err := r.users.Get(ctx, appID, m.RecipientID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				r.log.Warn().Str("recipient_id", m.RecipientID).Msg("recipient not found, skipping notification")
				return nil, nil
			}
			return nil, err
		}
		if recipient.HasToken() {
			aud.Tokens = append(aud.Tokens, recipient.FCMToken)
		}
		return aud, nil
	}

	for _, pid := range m.Participants {
		if pid == m.SenderID {
			continue
		}
		member, err := r.users.Get(ctx, appID, pid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if member.HasToken() {
			aud.Tokens = append(aud.Tokens, member.FCMToken)
		}
	}
	return aud, nil
}
