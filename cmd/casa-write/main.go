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
	casaWriteInstance *services.CasaWriteFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnCasaWritten", onCasaWritten)
}

// main is required by the Go Functions Framework.
func main() {}

// onCasaWritten is the Cloud Function entry point for casa document writes.
func onCasaWritten(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		casaWriteInstance, initErr = services.NewCasaWrite(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: casa-write initialization failed", "error", initErr)
		return initErr
	}

	var data firestoredata.DocumentEventData
	if err := proto.Unmarshal(e.Data(), &data); err != nil {
		// Malformed payloads can never succeed; don't ask for a retry.
		slog.Error("Failed to unmarshal event data", "error", err, "subject", e.Subject())
		return nil
	}

	// Aggregation failures are logged, never surfaced: the next write to
	// the same subtree recomputes everything from the current child-set.
	if err := casaWriteInstance.Process(ctx, &data); err != nil {
		slog.Error("Casa write processing failed", "error", err, "subject", e.Subject())
	}
	return nil
}
