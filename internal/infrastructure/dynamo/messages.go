package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/campuschat/notification-service/internal/domain"
)

// MessageRepo provides read access to the chat_messages table.
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

// Get fetches one chat message by id. Tenant scoping follows the same rule as
// users: a message from another app is reported as not found.
func (r *MessageRepo) Get(ctx context.Context, appID, messageID string) (*domain.ChatMessage, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("message_id", messageID),
	})
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	var m domain.ChatMessage
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message %s: %w", messageID, err)
	}
	if !inTenant(appID, m.AppID) {
		return nil, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return &m, nil
}
