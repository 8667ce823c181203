package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/territorio-digital/functions/internal/gcp"
	"github.com/territorio-digital/functions/internal/models"
)

// TerritoryWriteConfig holds configuration for the territory-write handler.
type TerritoryWriteConfig struct {
	ProjectID string
}

// TerritoryWriteFunction reacts to territory writes by recomputing the
// owning congregation's totals from all sibling territories, split by
// urban/rural classification. Same best-effort semantics as the quadra
// rollup.
type TerritoryWriteFunction struct {
	firestoreClient *firestore.Client
	config          TerritoryWriteConfig
}

// NewTerritoryWrite creates a new TerritoryWriteFunction instance.
func NewTerritoryWrite(ctx context.Context) (*TerritoryWriteFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &TerritoryWriteFunction{
		firestoreClient: firestoreClient,
		config:          TerritoryWriteConfig{ProjectID: projectID},
	}, nil
}

// Process handles one territory write event.
func (f *TerritoryWriteFunction) Process(ctx context.Context, data *firestoredata.DocumentEventData) error {
	path, err := parseTerritoryPath(eventDocumentName(data))
	if err != nil {
		return err
	}

	congregationRef := congregationDoc(f.firestoreClient, path.Congregation)

	it := congregationRef.Collection(collTerritories).Documents(ctx)
	defer it.Stop()

	var territories []models.Territory
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to scan territories of congregation %s: %w", path.Congregation, err)
		}
		var territory models.Territory
		if err := snap.DataTo(&territory); err != nil {
			return fmt.Errorf("failed to decode territory %s: %w", snap.Ref.ID, err)
		}
		territories = append(territories, territory)
	}

	rollup := rollupTerritories(territories)
	if _, err := congregationRef.Update(ctx, []firestore.Update{
		{Path: "territoryCount", Value: rollup.TerritoryCount},
		{Path: "ruralTerritoryCount", Value: rollup.RuralTerritoryCount},
		{Path: "totalQuadras", Value: rollup.TotalQuadras},
		{Path: "totalHouses", Value: rollup.TotalHouses},
		{Path: "totalHousesDone", Value: rollup.TotalHousesDone},
		{Path: "lastUpdate", Value: firestore.ServerTimestamp},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			slog.Warn("Congregation vanished before totals write.", "congregation", path.Congregation)
			return nil
		}
		return fmt.Errorf("failed to update congregation %s totals: %w", path.Congregation, err)
	}

	slog.Info("Congregation totals recomputed.",
		"congregation", path.Congregation,
		"territoryCount", rollup.TerritoryCount,
		"ruralTerritoryCount", rollup.RuralTerritoryCount,
		"totalHouses", rollup.TotalHouses,
	)
	return nil
}
