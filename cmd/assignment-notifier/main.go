package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/proto"

	"github.com/territorio-digital/functions/internal/services"
)

var (
	notifierInstance *services.AssignmentNotifierFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnTerritoryAssigned", onTerritoryAssigned)
}

// main is required by the Go Functions Framework.
func main() {}

// onTerritoryAssigned is the Cloud Function entry point for territory updates
// that may carry an assignment change.
func onTerritoryAssigned(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		notifierInstance, initErr = services.NewAssignmentNotifier(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: assignment-notifier initialization failed", "error", initErr)
		return initErr
	}

	var data firestoredata.DocumentEventData
	if err := proto.Unmarshal(e.Data(), &data); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "subject", e.Subject())
		return nil
	}

	// Send failures are fire-and-forget: the user sees a stale badge at
	// worst, and the next assignment change produces a fresh notification.
	if err := notifierInstance.Process(ctx, &data); err != nil {
		slog.Error("Assignment notification failed", "error", err, "subject", e.Subject())
	}
	return nil
}
