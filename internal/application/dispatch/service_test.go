package dispatch

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/campuschat/notification-service/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSender struct{ mock.Mock }

func (m *mockSender) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	args := m.Called(ctx, msg)
	if r, _ := args.Get(0).(*messaging.BatchResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSender) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newService(sender *mockSender) Service {
	return NewService(sender, zerolog.Nop())
}

var notif = domain.Notification{Title: "📢 Announcement", Body: "hello"}

// --- SendMulticast ---

func TestSendMulticast_EmptyTokensNeverCallsTransport(t *testing.T) {
	sender := &mockSender{}
	svc := newService(sender)

	res := svc.SendMulticast(context.Background(), nil, nil, notif)

	assert.Nil(t, res)
	sender.AssertNotCalled(t, "SendEachForMulticast", mock.Anything, mock.Anything)
}

func TestSendMulticast_AllEmptyStringsIsNoOp(t *testing.T) {
	sender := &mockSender{}
	svc := newService(sender)

	res := svc.SendMulticast(context.Background(), []string{"", ""}, nil, notif)

	assert.Nil(t, res)
	sender.AssertNotCalled(t, "SendEachForMulticast", mock.Anything, mock.Anything)
}

func TestSendMulticast_DeduplicatesPreservingOrder(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendEachForMulticast", mock.Anything, mock.MatchedBy(func(msg *messaging.MulticastMessage) bool {
		return assert.ObjectsAreEqual([]string{"t1", "t2", "t3"}, msg.Tokens)
	})).Return(&messaging.BatchResponse{SuccessCount: 3}, nil)

	svc := newService(sender)
	res := svc.SendMulticast(context.Background(), []string{"t1", "t2", "t1", "", "t3", "t2"}, nil, notif)

	require.NotNil(t, res)
	assert.Equal(t, 3, res.SuccessCount)
	sender.AssertExpectations(t)
}

func TestSendMulticast_TransportErrorSwallowed(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendEachForMulticast", mock.Anything, mock.Anything).
		Return(nil, errors.New("fcm unreachable"))

	svc := newService(sender)
	res := svc.SendMulticast(context.Background(), []string{"t1"}, nil, notif)

	assert.Nil(t, res)
}

func TestSendMulticast_ChunksLargeAudiences(t *testing.T) {
	tokens := make([]string, 1200)
	for i := range tokens {
		tokens[i] = "tok" + strconv.Itoa(i)
	}

	sender := &mockSender{}
	var chunks []int
	sender.On("SendEachForMulticast", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			msg := args.Get(1).(*messaging.MulticastMessage)
			chunks = append(chunks, len(msg.Tokens))
		}).
		Return(&messaging.BatchResponse{SuccessCount: 400, FailureCount: 100}, nil)

	svc := newService(sender)
	res := svc.SendMulticast(context.Background(), tokens, nil, notif)

	require.NotNil(t, res)
	assert.Equal(t, []int{500, 500, 200}, chunks)
	assert.Equal(t, 1200, res.SuccessCount)
	assert.Equal(t, 300, res.FailureCount)
}

func TestSendMulticast_PassesPayloadThrough(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendEachForMulticast", mock.Anything, mock.MatchedBy(func(msg *messaging.MulticastMessage) bool {
		return msg.Notification.Title == "📢 Announcement" &&
			msg.Notification.Body == "hello" &&
			msg.Data["type"] == "General"
	})).Return(&messaging.BatchResponse{SuccessCount: 1}, nil)

	svc := newService(sender)
	svc.SendMulticast(context.Background(), []string{"t1"}, map[string]string{"type": "General"}, notif)

	sender.AssertExpectations(t)
}

// --- SendSingle ---

func TestSendSingle_EmptyTokenIsNoOp(t *testing.T) {
	sender := &mockSender{}
	svc := newService(sender)

	id := svc.SendSingle(context.Background(), "", nil, notif)

	assert.Empty(t, id)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendSingle_ReturnsMessageID(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
		return msg.Token == "t1"
	})).Return("projects/p/messages/m1", nil)

	svc := newService(sender)
	id := svc.SendSingle(context.Background(), "t1", nil, notif)

	assert.Equal(t, "projects/p/messages/m1", id)
}

func TestSendSingle_TransportErrorSwallowed(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("invalid token"))

	svc := newService(sender)
	id := svc.SendSingle(context.Background(), "t1", nil, notif)

	assert.Empty(t, id)
}
