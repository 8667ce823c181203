package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/territorio-digital/functions/internal/gcp"
	"github.com/territorio-digital/functions/internal/models"
)

const (
	assignmentTitle  = "Novo território designado"
	notificationIcon = "/icons/icon-192x192.png"
	notificationLink = "/territorios"
)

// AssignmentNotifierFunction pushes a mobile notification to the newly
// designated user's devices when a territory assignment changes hands.
// Fire-and-forget: partial multi-device failures are logged, never retried.
type AssignmentNotifierFunction struct {
	firestoreClient *firestore.Client
	messagingClient *messaging.Client
}

// NewAssignmentNotifier creates a new AssignmentNotifierFunction instance.
func NewAssignmentNotifier(ctx context.Context) (*AssignmentNotifierFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	messagingClient, err := gcp.NewMessagingClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &AssignmentNotifierFunction{
		firestoreClient: firestoreClient,
		messagingClient: messagingClient,
	}, nil
}

// Process handles one territory update event.
func (f *AssignmentNotifierFunction) Process(ctx context.Context, data *firestoredata.DocumentEventData) error {
	newDoc := data.GetValue()
	uid, changed := assignmentChange(data.GetOldValue(), newDoc)
	if !changed {
		return nil
	}
	logCtx := slog.With("document", newDoc.GetName(), "uid", uid)

	snap, err := f.firestoreClient.Collection(collUsers).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			logCtx.Warn("Assigned user has no profile, notification skipped.")
			return nil
		}
		return fmt.Errorf("failed to load user %s: %w", uid, err)
	}
	var profile models.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return fmt.Errorf("failed to decode user %s: %w", uid, err)
	}
	if len(profile.FCMTokens) == 0 {
		logCtx.Info("Assigned user has no registered devices.")
		return nil
	}

	msg := buildAssignmentMessage(territoryDisplayName(newDoc), assignmentDueDate(newDoc), profile.FCMTokens)
	resp, err := f.messagingClient.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send assignment notification: %w", err)
	}
	if resp.FailureCount > 0 {
		logCtx.Warn("Notification delivery partially failed.",
			"successes", resp.SuccessCount, "failures", resp.FailureCount)
	} else {
		logCtx.Info("Assignment notification sent.", "devices", resp.SuccessCount)
	}
	return nil
}

// buildAssignmentMessage renders the push payload for all of the user's
// devices. Due dates use the Brazilian dd/MM/yyyy convention.
func buildAssignmentMessage(territoryName string, dueDate time.Time, tokens []string) *messaging.MulticastMessage {
	body := fmt.Sprintf("Você recebeu o território %s.", territoryName)
	if !dueDate.IsZero() {
		body = fmt.Sprintf("Você recebeu o território %s. Devolução até %s.",
			territoryName, dueDate.Format("02/01/2006"))
	}

	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: assignmentTitle,
			Body:  body,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: assignmentTitle,
				Body:  body,
				Icon:  notificationIcon,
			},
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: notificationLink,
			},
		},
	}
}
