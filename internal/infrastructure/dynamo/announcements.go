package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/campuschat/notification-service/internal/domain"
)

// AnnouncementRepo provides read access to the announcements table. Skinny
// events carry only a document path; the handler fetches the snapshot here.
type AnnouncementRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAnnouncementRepo(client *dynamodb.Client, tableName string) *AnnouncementRepo {
	return &AnnouncementRepo{client: client, tableName: tableName}
}

func (r *AnnouncementRepo) Get(ctx context.Context, announcementID string) (*domain.Announcement, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("announcement_id", announcementID),
	})
	if err != nil {
		return nil, fmt.Errorf("get announcement %s: %w", announcementID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("announcement %s: %w", announcementID, domain.ErrNotFound)
	}
	var a domain.Announcement
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal announcement %s: %w", announcementID, err)
	}
	return &a, nil
}
