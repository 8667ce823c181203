package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/territorio-digital/functions/internal/gcp"
)

// CascadeDeleteFunction removes every descendant document when a territory
// or quadra is deleted. Re-running against an already-empty subtree is a
// no-op, so retried or overlapping invocations are harmless.
type CascadeDeleteFunction struct {
	firestoreClient *firestore.Client
}

// NewCascadeDelete creates a new CascadeDeleteFunction instance.
func NewCascadeDelete(ctx context.Context) (*CascadeDeleteFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &CascadeDeleteFunction{firestoreClient: firestoreClient}, nil
}

// DeleteTerritoryTree purges a deleted territory's activity history and all
// of its quadras, each quadra's casas included. Quadras are handled
// concurrently.
func (f *CascadeDeleteFunction) DeleteTerritoryTree(ctx context.Context, data *firestoredata.DocumentEventData) error {
	old := data.GetOldValue()
	if old == nil {
		return nil
	}
	path, err := parseTerritoryPath(old.GetName())
	if err != nil {
		return err
	}
	territoryRef := territoryDoc(f.firestoreClient, path)

	if err := f.deleteCollection(ctx, territoryRef.Collection(collActivityHistory)); err != nil {
		return fmt.Errorf("failed to purge activity history of territory %s: %w", path.Territory, err)
	}

	quadraRefs, err := territoryRef.Collection(collQuadras).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to list quadras of territory %s: %w", path.Territory, err)
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, quadraRef := range quadraRefs {
		eg.Go(func() error {
			if err := f.deleteCollection(gctx, quadraRef.Collection(collCasas)); err != nil {
				return fmt.Errorf("quadra %s: failed to purge casas: %w", quadraRef.ID, err)
			}
			if _, err := quadraRef.Delete(gctx); err != nil {
				return fmt.Errorf("quadra %s: failed to delete: %w", quadraRef.ID, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	slog.Info("Territory subtree deleted.", "territory", path.Territory, "quadras", len(quadraRefs))
	return nil
}

// DeleteQuadraTree purges a deleted quadra's casas.
func (f *CascadeDeleteFunction) DeleteQuadraTree(ctx context.Context, data *firestoredata.DocumentEventData) error {
	old := data.GetOldValue()
	if old == nil {
		return nil
	}
	path, err := parseQuadraPath(old.GetName())
	if err != nil {
		return err
	}
	quadraRef := quadraDoc(f.firestoreClient, path)

	if err := f.deleteCollection(ctx, quadraRef.Collection(collCasas)); err != nil {
		return fmt.Errorf("failed to purge casas of quadra %s: %w", path.Quadra, err)
	}
	return nil
}

// deleteCollection deletes every document in coll through a BulkWriter,
// which flushes in bounded batches regardless of collection size. Each
// job's result is checked after End so per-document failures surface in
// the logs rather than vanishing.
func (f *CascadeDeleteFunction) deleteCollection(ctx context.Context, coll *firestore.CollectionRef) error {
	bw := f.firestoreClient.BulkWriter(ctx)
	it := coll.DocumentRefs(ctx)

	var jobs []*firestore.BulkWriterJob
	var scanErr error
	for {
		ref, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			scanErr = fmt.Errorf("failed to list %s: %w", coll.Path, err)
			break
		}
		job, err := bw.Delete(ref)
		if err != nil {
			scanErr = fmt.Errorf("failed to queue delete for %s: %w", ref.Path, err)
			break
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var failed int
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
			slog.Error("Delete failed.", "collection", coll.Path, "error", err)
		}
	}
	if scanErr != nil {
		return scanErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed in %s", failed, len(jobs), coll.Path)
	}

	if len(jobs) > 0 {
		slog.Info("Collection purged.", "collection", coll.Path, "count", len(jobs))
	}
	return nil
}
