package announce

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/campuschat/notification-service/internal/application/audience"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/campuschat/notification-service/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockResolver struct{ mock.Mock }

func (m *mockResolver) ForAnnouncement(ctx context.Context, a *domain.Announcement) ([]string, error) {
	args := m.Called(ctx, a)
	if t, _ := args.Get(0).([]string); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResolver) ForChatMessage(ctx context.Context, chatID string, msg *domain.ChatMessage) (*audience.ChatAudience, error) {
	args := m.Called(ctx, chatID, msg)
	if a, _ := args.Get(0).(*audience.ChatAudience); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) SendMulticast(ctx context.Context, tokens []string, data map[string]string, n domain.Notification) *domain.DeliveryResult {
	args := m.Called(ctx, tokens, data, n)
	if r, _ := args.Get(0).(*domain.DeliveryResult); r != nil {
		return r
	}
	return nil
}

func (m *mockDispatcher) SendSingle(ctx context.Context, token string, data map[string]string, n domain.Notification) string {
	return m.Called(ctx, token, data, n).String(0)
}

type mockAnnouncementStore struct{ mock.Mock }

func (m *mockAnnouncementStore) Get(ctx context.Context, announcementID string) (*domain.Announcement, error) {
	args := m.Called(ctx, announcementID)
	if a, _ := args.Get(0).(*domain.Announcement); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newService(res *mockResolver, disp *mockDispatcher, repo *mockAnnouncementStore, opts Options) Service {
	return NewService(ServiceDeps{Audience: res, Dispatcher: disp, Repo: repo, Options: opts})
}

func event(id string, doc any) trigger.Event {
	data, _ := json.Marshal(doc)
	return trigger.Event{
		Path:   "announcements/" + id,
		Params: map[string]string{"announcementId": id},
		Data:   data,
	}
}

// --- tests ---

func TestHandle_GeneralAnnouncementPayload(t *testing.T) {
	res := &mockResolver{}
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return([]string{"t1", "t2"}, nil)

	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, []string{"t1", "t2"},
		map[string]string{
			"type":            "General",
			"announcement_id": "a1",
			"is_general":      "true",
		},
		domain.Notification{
			Title: "📢 General Announcement",
			Body:  "Exam timetable out",
		}).Return(&domain.DeliveryResult{SuccessCount: 2})

	svc := newService(res, disp, nil, Options{})
	err := svc.Handle(context.Background(), event("a1", domain.Announcement{
		Title:    "Exam timetable out\nsee portal",
		Category: domain.CategoryGeneral,
	}))

	require.NoError(t, err)
	disp.AssertExpectations(t)
}

func TestHandle_EmptyAudienceSkipsDispatch(t *testing.T) {
	res := &mockResolver{}
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return(nil, nil)

	disp := &mockDispatcher{}
	svc := newService(res, disp, nil, Options{})

	err := svc.Handle(context.Background(), event("a1", domain.Announcement{
		Category: domain.CategoryNotes,
		AuthorID: "ghost",
	}))

	require.NoError(t, err)
	disp.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_ResolverStoreErrorPropagates(t *testing.T) {
	res := &mockResolver{}
	storeErr := errors.New("dynamo unavailable")
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return(nil, storeErr)

	svc := newService(res, &mockDispatcher{}, nil, Options{})
	err := svc.Handle(context.Background(), event("a1", domain.Announcement{
		Category: domain.CategoryNotes,
	}))

	assert.Equal(t, storeErr, err)
}

func TestHandle_CategoryPayloadWithUnit(t *testing.T) {
	res := &mockResolver{}
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return([]string{"t1"}, nil)

	var sent map[string]string
	var n domain.Notification
	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).(map[string]string)
			n = args.Get(3).(domain.Notification)
		}).Return(nil)

	svc := newService(res, disp, nil, Options{})
	err := svc.Handle(context.Background(), event("a2", domain.Announcement{
		Category:    domain.CategoryNotes,
		Description: "chapter 4 summary uploaded",
		UnitCode:    "CSC 201",
		UnitTitle:   "Data Structures",
		Year:        "3",
		Semester:    "1",
	}))

	require.NoError(t, err)
	assert.Equal(t, "📚 New Notes", n.Title)
	assert.Equal(t, "CSC 201 - chapter 4 summary uploaded", n.Body)
	assert.Equal(t, map[string]string{
		"type":            "Notes",
		"announcement_id": "a2",
		"unit_code":       "CSC 201",
		"year":            "3",
		"semester":        "1",
	}, sent)
}

func TestHandle_CompactOptionsFoldCaseAndTruncateAt80(t *testing.T) {
	res := &mockResolver{}
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return([]string{"t1"}, nil)

	var n domain.Notification
	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { n = args.Get(3).(domain.Notification) }).
		Return(nil)

	svc := newService(res, disp, nil, Options{FoldTitleCase: true, CompactBody: true})
	err := svc.Handle(context.Background(), event("a3", domain.Announcement{
		Category:    "assignment",
		Description: strings.Repeat("d", 150),
	}))

	require.NoError(t, err)
	assert.Equal(t, "📝 New Assignment", n.Title)
	assert.Equal(t, strings.Repeat("d", 80)+"... Tap to view.", n.Body)
}

func TestHandle_TenantRouteScopesAnnouncementFromPath(t *testing.T) {
	res := &mockResolver{}
	var resolved *domain.Announcement
	res.On("ForAnnouncement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { resolved = args.Get(1).(*domain.Announcement) }).
		Return([]string{"t1"}, nil)

	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(res, disp, nil, Options{})
	data, _ := json.Marshal(domain.Announcement{
		Category:    domain.CategoryNotes,
		Description: "lecture moved",
	})
	err := svc.Handle(context.Background(), trigger.Event{
		Path:   "apps/app2/announcements/a6",
		Params: map[string]string{"appId": "app2", "announcementId": "a6"},
		Data:   data,
	})

	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "app2", resolved.AppID)
}

func TestHandle_SnapshotAppIDWinsOverPath(t *testing.T) {
	res := &mockResolver{}
	var resolved *domain.Announcement
	res.On("ForAnnouncement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { resolved = args.Get(1).(*domain.Announcement) }).
		Return([]string{"t1"}, nil)

	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(res, disp, nil, Options{})
	data, _ := json.Marshal(domain.Announcement{
		Category: domain.CategoryNotes,
		AppID:    "app1",
	})
	err := svc.Handle(context.Background(), trigger.Event{
		Path:   "apps/app2/announcements/a7",
		Params: map[string]string{"appId": "app2", "announcementId": "a7"},
		Data:   data,
	})

	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "app1", resolved.AppID)
}

func TestHandle_SkinnyEventFetchesFromStore(t *testing.T) {
	repo := &mockAnnouncementStore{}
	repo.On("Get", mock.Anything, "a4").Return(&domain.Announcement{
		Category: domain.CategoryGeneral,
		Title:    "hello",
	}, nil)

	res := &mockResolver{}
	res.On("ForAnnouncement", mock.Anything, mock.Anything).Return([]string{"t1"}, nil)
	disp := &mockDispatcher{}
	disp.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(res, disp, repo, Options{})
	err := svc.Handle(context.Background(), trigger.Event{
		Path:   "announcements/a4",
		Params: map[string]string{"announcementId": "a4"},
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandle_SkinnyEventMissingDocumentIsNoOp(t *testing.T) {
	repo := &mockAnnouncementStore{}
	repo.On("Get", mock.Anything, "a5").Return(nil, domain.ErrNotFound)

	svc := newService(&mockResolver{}, &mockDispatcher{}, repo, Options{})
	err := svc.Handle(context.Background(), trigger.Event{
		Path:   "announcements/a5",
		Params: map[string]string{"announcementId": "a5"},
	})

	require.NoError(t, err)
}
