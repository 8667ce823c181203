package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/territorio-digital/functions/internal/gcp"
	"github.com/territorio-digital/functions/internal/models"
)

// autoLogDescription is the fixed text of the automatic daily entry.
const autoLogDescription = "Início do trabalho no território registrado automaticamente"

// CasaWriteConfig holds configuration for the casa-write handler.
type CasaWriteConfig struct {
	ProjectID string
	DayZone   *time.Location
}

// CasaWriteFunction reacts to casa writes: it recomputes the owning quadra's
// totals transactionally and, when a casa just got worked, records the first
// activity of the day in the owning territory.
type CasaWriteFunction struct {
	firestoreClient *firestore.Client
	config          CasaWriteConfig
}

// NewCasaWrite creates a new CasaWriteFunction instance.
func NewCasaWrite(ctx context.Context) (*CasaWriteFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	// One canonical timezone for the calendar-day key, never server-local:
	// otherwise the automatic log could fire twice near day boundaries.
	zoneName := gcp.GetEnv("DAILY_LOG_TIMEZONE", "America/Sao_Paulo")
	zone, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_LOG_TIMEZONE %q: %w", zoneName, err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &CasaWriteFunction{
		firestoreClient: firestoreClient,
		config:          CasaWriteConfig{ProjectID: projectID, DayZone: zone},
	}, nil
}

// Process handles one casa write event. Step failures are logged and
// swallowed: there is no caller to receive them, and the next write to the
// same subtree recomputes everything from scratch anyway.
func (f *CasaWriteFunction) Process(ctx context.Context, data *firestoredata.DocumentEventData) error {
	doc := data.GetValue()
	if doc == nil {
		// Casa deleted. Stats are not recomputed on deletes; the next
		// sibling write self-heals the quadra totals.
		slog.Info("Casa deleted, skipping recompute.", "document", data.GetOldValue().GetName())
		return nil
	}

	path, err := parseCasaPath(doc.GetName())
	if err != nil {
		return err
	}
	logCtx := slog.With("document", doc.GetName())

	if err := f.recomputeQuadraStats(ctx, path.QuadraPath()); err != nil {
		logCtx.Error("Failed to recompute quadra stats", "error", err)
	}

	if !workedTransition(data.GetOldValue(), doc) {
		return nil
	}

	day := dayKey(time.Now(), f.config.DayZone)
	if err := f.logDailyActivity(ctx, path.TerritoryPath(), day, logCtx); err != nil {
		logCtx.Error("Failed to record daily activity", "error", err, "day", day)
	}
	return nil
}

// recomputeQuadraStats rescans the quadra's casas and writes the totals back
// within one transaction. Concurrent casa toggles retry against a fresh
// snapshot, so the count always reflects the full current child-set.
func (f *CasaWriteFunction) recomputeQuadraStats(ctx context.Context, p QuadraPath) error {
	quadraRef := quadraDoc(f.firestoreClient, p)
	casasColl := quadraRef.Collection(collCasas)

	return f.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		it := tx.Documents(casasColl)
		defer it.Stop()

		var casas []models.Casa
		for {
			snap, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to scan casas of quadra %s: %w", p.Quadra, err)
			}
			var casa models.Casa
			if err := snap.DataTo(&casa); err != nil {
				return fmt.Errorf("failed to decode casa %s: %w", snap.Ref.ID, err)
			}
			casas = append(casas, casa)
		}

		total, done := casaTally(casas)
		return tx.Update(quadraRef, []firestore.Update{
			{Path: "totalHouses", Value: total},
			{Path: "housesDone", Value: done},
		})
	})
}

// logDailyActivity conditionally creates the automatic "work started" entry
// for the given day and bumps the territory's lastUpdate. The entry's
// document ID is derived from the day, so a concurrent duplicate insert
// fails with AlreadyExists and is treated as a clean skip.
func (f *CasaWriteFunction) logDailyActivity(ctx context.Context, p TerritoryPath, day string, logCtx *slog.Logger) error {
	territoryRef := territoryDoc(f.firestoreClient, p)
	entryRef := territoryRef.Collection(collActivityHistory).Doc(dailyLogID(day))

	entry := models.ActivityEntry{
		Type:            models.ActivityTypeWork,
		ActivityDateStr: day,
		Description:     autoLogDescription,
		UserID:          models.SystemUserID,
		UserName:        models.SystemUserName,
	}
	if _, err := entryRef.Create(ctx, entry); err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("failed to create activity entry: %w", err)
		}
		logCtx.Debug("Automatic activity entry already exists for today.", "day", day)
	} else {
		logCtx.Info("Recorded first activity of the day.", "day", day)
	}

	if _, err := territoryRef.Update(ctx, []firestore.Update{
		{Path: "lastUpdate", Value: firestore.ServerTimestamp},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			logCtx.Warn("Territory vanished before lastUpdate bump.", "territory", p.Territory)
			return nil
		}
		return fmt.Errorf("failed to bump territory lastUpdate: %w", err)
	}
	return nil
}

// dayKey renders the calendar-day idempotence key for t in the given zone.
func dayKey(t time.Time, zone *time.Location) string {
	return t.In(zone).Format("2006-01-02")
}

// dailyLogID is the deterministic document ID of the automatic entry.
func dailyLogID(day string) string {
	return "work-" + day
}
