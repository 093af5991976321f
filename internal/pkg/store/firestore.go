package store

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Cloud Firestore client to the Store contract.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

var _ Store = (*FirestoreStore)(nil)

func NewFirestoreStore(ctx context.Context, projectID string, logger *zap.Logger) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, logger: logger}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("failed to read document %s/%s: %w", collection, id, err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	it := s.buildQuery(collection, q).Documents(ctx)
	defer it.Stop()

	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Subscribe registers a snapshot listener for the query. Each server-side
// change re-delivers the full matching set, starting with the current one.
func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, q Query) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	it := s.buildQuery(collection, q).Snapshots(subCtx)

	sub := &firestoreSubscription{
		ch:     make(chan []Document, 1),
		cancel: cancel,
		it:     it,
	}

	go func() {
		defer close(sub.ch)
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.Error("Snapshot listener terminated",
						zap.String("collection", collection),
						zap.Error(err),
					)
				}
				return
			}
			docs := make([]Document, 0, snap.Size)
			docIt := snap.Documents
			for {
				docSnap, err := docIt.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					s.logger.Error("Failed to read snapshot document",
						zap.String("collection", collection),
						zap.Error(err),
					)
					break
				}
				docs = append(docs, Document{ID: docSnap.Ref.ID, Data: docSnap.Data()})
			}
			select {
			case sub.ch <- docs:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func (s *FirestoreStore) buildQuery(collection string, q Query) firestore.Query {
	fq := s.client.Collection(collection).Query
	if q.Field != "" {
		fq = fq.Where(q.Field, "==", q.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	return fq
}

type firestoreSubscription struct {
	ch     chan []Document
	cancel context.CancelFunc
	it     *firestore.QuerySnapshotIterator
	once   sync.Once
}

func (s *firestoreSubscription) Snapshots() <-chan []Document { return s.ch }

func (s *firestoreSubscription) Stop() {
	s.once.Do(func() {
		s.it.Stop()
		s.cancel()
	})
}
