package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/campuschat/notification-service/internal/domain"
)

// UserRepo provides read access to the users table. The service never writes
// user records; they are created and updated by the client app.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Get fetches one user by id. When appID is non-empty the lookup is tenant
// scoped: a user belonging to another app is reported as not found rather
// than leaked across the tenant boundary.
func (r *UserRepo) Get(ctx context.Context, appID, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", userID, err)
	}
	if !inTenant(appID, u.AppID) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return &u, nil
}

// Query returns every user matching the AND-conjunction of filters, scoped to
// appID when non-empty. With zero filters this is a full-collection scan
// (the General broadcast path). Batches are campus-scale, so the paginated
// scan is drained into one slice.
func (r *UserRepo) Query(ctx context.Context, appID string, f domain.UserFilters) ([]domain.User, error) {
	b := newFilterBuilder()
	if appID != "" {
		b.eq("app_id", appID)
	}
	if f.Course != "" {
		b.eq("course", f.Course)
	}
	if f.Campus != "" {
		b.eq("campus", f.Campus)
	}
	if f.School != "" {
		b.eq("school", f.School)
	}
	if f.Department != "" {
		b.eq("department", f.Department)
	}
	if f.Year != "" {
		b.eq("year", f.Year)
	}
	if f.Semester != "" {
		b.eq("semester", f.Semester)
	}
	if f.RequireToken {
		b.tokenPresent("fcm_token")
	}
	expr, names, values := b.expression()

	var users []domain.User
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query users: %w", err)
		}
		var page []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		users = append(users, page...)
		if out.LastEvaluatedKey == nil {
			return users, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
