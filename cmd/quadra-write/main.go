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
	quadraWriteInstance *services.QuadraWriteFunction
	once                sync.Once
	initErr             error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnQuadraWritten", onQuadraWritten)
}

// main is required by the Go Functions Framework.
func main() {}

// onQuadraWritten is the Cloud Function entry point for quadra document writes.
func onQuadraWritten(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		quadraWriteInstance, initErr = services.NewQuadraWrite(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: quadra-write initialization failed", "error", initErr)
		return initErr
	}

	var data firestoredata.DocumentEventData
	if err := proto.Unmarshal(e.Data(), &data); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "subject", e.Subject())
		return nil
	}

	if err := quadraWriteInstance.Process(ctx, &data); err != nil {
		slog.Error("Quadra write processing failed", "error", err, "subject", e.Subject())
	}
	return nil
}
