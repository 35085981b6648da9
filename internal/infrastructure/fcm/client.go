// Package fcm constructs the Firebase Cloud Messaging client. The client is
// created once at process start and injected into the dispatcher.
package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/campuschat/notification-service/internal/config"
	"google.golang.org/api/option"
)

// NewClient initialises the Firebase app and returns its messaging client.
// With no credentials file configured, Application Default Credentials apply.
func NewClient(ctx context.Context, cfg *config.Config) (*messaging.Client, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCPProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return client, nil
}
