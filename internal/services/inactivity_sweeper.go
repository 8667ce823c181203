package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/territorio-digital/functions/internal/gcp"
)

const defaultStaleAfter = 2 * time.Hour

// SweeperConfig holds configuration for the inactivity sweeper.
type SweeperConfig struct {
	ProjectID  string
	StaleAfter time.Duration
}

// SweeperFunction flips users to offline when they have been marked online
// longer than the staleness threshold. It compensates for ungraceful
// disconnects the presence mirror never sees (crash, force-quit, network
// black-hole), where the client's onDisconnect hook does not fire.
type SweeperFunction struct {
	firestoreClient *firestore.Client
	config          SweeperConfig
}

// NewSweeper creates a new SweeperFunction instance.
func NewSweeper(ctx context.Context) (*SweeperFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	staleAfter, err := parseStaleAfter(gcp.GetEnv("PRESENCE_STALE_AFTER", ""))
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &SweeperFunction{
		firestoreClient: firestoreClient,
		config:          SweeperConfig{ProjectID: projectID, StaleAfter: staleAfter},
	}, nil
}

// Sweep flips every stale online profile to offline and returns how many
// flips were actually applied. lastSeen is left as-is: it already reflects
// the last real activity. Updates go through a BulkWriter, which flushes in
// bounded batches, so the candidate set can be arbitrarily large; each
// job's result is checked after End so failed flips are logged and not
// counted.
func (f *SweeperFunction) Sweep(ctx context.Context) (int, error) {
	cutoff := staleCutoff(time.Now(), f.config.StaleAfter)

	it := f.firestoreClient.Collection(collUsers).
		Where("isOnline", "==", true).
		Where("lastSeen", "<", cutoff).
		Documents(ctx)
	defer it.Stop()

	bw := f.firestoreClient.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	var scanErr error
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			scanErr = fmt.Errorf("failed to query stale online users: %w", err)
			break
		}
		job, err := bw.Update(snap.Ref, []firestore.Update{
			{Path: "isOnline", Value: false},
		})
		if err != nil {
			scanErr = fmt.Errorf("failed to queue offline flip for %s: %w", snap.Ref.ID, err)
			break
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var swept int
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			slog.Error("Offline flip failed.", "error", err)
			continue
		}
		swept++
	}
	if scanErr != nil {
		return swept, scanErr
	}

	if swept > 0 {
		slog.Info("Stale online users flipped to offline.", "count", swept, "cutoff", cutoff)
	}
	return swept, nil
}

// staleCutoff is the newest lastSeen a user may carry and still be swept.
func staleCutoff(now time.Time, staleAfter time.Duration) time.Time {
	return now.Add(-staleAfter)
}

// parseStaleAfter reads the staleness threshold, defaulting to two hours.
func parseStaleAfter(raw string) (time.Duration, error) {
	if raw == "" {
		return defaultStaleAfter, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid PRESENCE_STALE_AFTER %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("PRESENCE_STALE_AFTER must be positive, got %q", raw)
	}
	return d, nil
}
