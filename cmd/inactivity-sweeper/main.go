package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/territorio-digital/functions/internal/services"
)

var (
	sweeperInstance *services.SweeperFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Invoked by Cloud Scheduler every 5 minutes.
	functions.HTTP("SweepInactiveUsers", sweepInactiveUsers)
}

// main is required by the Go Functions Framework.
func main() {}

// sweepInactiveUsers is the HTTP handler for the scheduled sweep.
func sweepInactiveUsers(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		sweeperInstance, initErr = services.NewSweeper(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: inactivity-sweeper initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	swept, err := sweeperInstance.Sweep(r.Context())
	if err != nil {
		slog.Error("Sweep failed", "error", err, "sweptBeforeFailure", swept)
		http.Error(w, "Internal Server Error: sweep failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":     "success",
		"sweptCount": swept,
	}); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
