package gcp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// NewMessagingClient initializes the firebase-admin app for the given project
// and returns its Cloud Messaging client. Credentials come from the runtime
// service account by default; FIREBASE_SERVICE_ACCOUNT overrides them with an
// inline JSON key for local runs.
func NewMessagingClient(ctx context.Context, projectID string) (*messaging.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a messaging client")
	}

	conf := &firebase.Config{ProjectID: projectID}

	var opts []option.ClientOption
	if sa := GetEnv("FIREBASE_SERVICE_ACCOUNT", ""); sa != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(sa)))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return client, nil
}
