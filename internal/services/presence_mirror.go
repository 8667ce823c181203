package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/territorio-digital/functions/internal/gcp"
	"github.com/territorio-digital/functions/internal/models"
)

// PresenceMirrorFunction bridges the ephemeral Realtime Database connection
// node into the durable user profile. It is the only writer of the
// isOnline/lastSeen pair besides the inactivity sweeper.
type PresenceMirrorFunction struct {
	firestoreClient *firestore.Client
}

// NewPresenceMirror creates a new PresenceMirrorFunction instance.
func NewPresenceMirror(ctx context.Context) (*PresenceMirrorFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &PresenceMirrorFunction{firestoreClient: firestoreClient}, nil
}

// Process mirrors one write of /status/{uid} into users/{uid}. A missing
// profile (user deleted) is silently skipped.
func (f *PresenceMirrorFunction) Process(ctx context.Context, uid string, ev models.ReferenceEvent) error {
	online := isOnline(ev)

	_, err := f.firestoreClient.Collection(collUsers).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "isOnline", Value: online},
		{Path: "lastSeen", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			slog.Debug("User profile missing, presence update skipped.", "uid", uid)
			return nil
		}
		return fmt.Errorf("failed to mirror presence for %s: %w", uid, err)
	}

	slog.Info("Presence mirrored.", "uid", uid, "isOnline", online)
	return nil
}

// isOnline resolves the durable flag from the node state after the write.
// A deleted node or anything other than an explicit "online" means offline.
func isOnline(ev models.ReferenceEvent) bool {
	after := ev.After()
	return after != nil && after.State == models.PresenceOnline
}
