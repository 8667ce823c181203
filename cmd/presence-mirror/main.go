package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/territorio-digital/functions/internal/models"
	"github.com/territorio-digital/functions/internal/services"
)

var (
	mirrorInstance *services.PresenceMirrorFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnPresenceWritten", onPresenceWritten)
}

// main is required by the Go Functions Framework.
func main() {}

// onPresenceWritten is the Cloud Function entry point for writes to the
// Realtime Database /status/{uid} node.
func onPresenceWritten(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		mirrorInstance, initErr = services.NewPresenceMirror(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: presence-mirror initialization failed", "error", initErr)
		return initErr
	}

	uid, err := services.UIDFromSubject(e.Subject())
	if err != nil {
		slog.Error("Unexpected event subject", "error", err, "subject", e.Subject())
		return nil
	}

	var ev models.ReferenceEvent
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "subject", e.Subject())
		return nil
	}

	if err := mirrorInstance.Process(ctx, uid, ev); err != nil {
		slog.Error("Presence mirroring failed", "error", err, "uid", uid)
	}
	return nil
}
