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

// QuadraWriteConfig holds configuration for the quadra-write handler.
type QuadraWriteConfig struct {
	ProjectID string
}

// QuadraWriteFunction reacts to quadra writes by recomputing the owning
// territory's stats from all sibling quadras. Best-effort and
// non-transactional: a lost update is corrected by the next quadra write.
type QuadraWriteFunction struct {
	firestoreClient *firestore.Client
	config          QuadraWriteConfig
}

// NewQuadraWrite creates a new QuadraWriteFunction instance.
func NewQuadraWrite(ctx context.Context) (*QuadraWriteFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &QuadraWriteFunction{
		firestoreClient: firestoreClient,
		config:          QuadraWriteConfig{ProjectID: projectID},
	}, nil
}

// Process handles one quadra write event, deletes included: the rescan of
// the remaining siblings makes delete and write the same recomputation.
func (f *QuadraWriteFunction) Process(ctx context.Context, data *firestoredata.DocumentEventData) error {
	path, err := parseQuadraPath(eventDocumentName(data))
	if err != nil {
		return err
	}

	territoryRef := territoryDoc(f.firestoreClient, path.TerritoryPath())

	it := territoryRef.Collection(collQuadras).Documents(ctx)
	defer it.Stop()

	var quadras []models.Quadra
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to scan quadras of territory %s: %w", path.Territory, err)
		}
		var quadra models.Quadra
		if err := snap.DataTo(&quadra); err != nil {
			return fmt.Errorf("failed to decode quadra %s: %w", snap.Ref.ID, err)
		}
		quadras = append(quadras, quadra)
	}

	rollup := rollupQuadras(quadras)
	if _, err := territoryRef.Update(ctx, []firestore.Update{
		{Path: "stats.totalHouses", Value: rollup.TotalHouses},
		{Path: "stats.housesDone", Value: rollup.HousesDone},
		{Path: "progress", Value: rollup.Progress},
		{Path: "quadraCount", Value: rollup.QuadraCount},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			// Territory deleted mid-cascade.
			slog.Warn("Territory vanished before stats write.", "territory", path.Territory)
			return nil
		}
		return fmt.Errorf("failed to update territory %s stats: %w", path.Territory, err)
	}

	slog.Info("Territory stats recomputed.",
		"territory", path.Territory,
		"quadraCount", rollup.QuadraCount,
		"totalHouses", rollup.TotalHouses,
		"housesDone", rollup.HousesDone,
	)
	return nil
}
