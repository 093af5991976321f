package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with the same live-subscription
// semantics as the Firestore adapter. It backs the engine tests and any host
// that wants to run without a remote store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[string][]*memorySubscription
	nextSubID   int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[string][]*memorySubscription),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.collections[collection] = coll
	}
	coll[id] = cloneData(data)
	s.notifyLocked(collection)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneData(data)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchLocked(collection, q), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	s.notifyLocked(collection)
	return nil
}

// Subscribe delivers the current matching set immediately, then the full set
// again after every change to the collection.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, q Query) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &memorySubscription{
		id:         s.nextSubID,
		store:      s,
		collection: collection,
		query:      q,
		ch:         make(chan []Document, 16),
	}
	s.nextSubID++
	s.subs[collection] = append(s.subs[collection], sub)
	sub.ch <- s.matchLocked(collection, q)

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Stop()
		}()
	}
	return sub, nil
}

// notifyLocked redelivers the matching set to every subscriber of the
// collection. Callers hold s.mu.
func (s *MemoryStore) notifyLocked(collection string) {
	for _, sub := range s.subs[collection] {
		docs := s.matchLocked(collection, sub.query)
		select {
		case sub.ch <- docs:
		default:
			// Slow consumer: drop the stale pending snapshot, keep the latest.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- docs
		}
	}
}

func (s *MemoryStore) matchLocked(collection string, q Query) []Document {
	docs := make([]Document, 0)
	for id, data := range s.collections[collection] {
		if q.Field != "" && !valuesEqual(data[q.Field], q.Value) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: cloneData(data)})
	}
	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			if q.Desc {
				return valueLess(docs[j].Data[q.OrderBy], docs[i].Data[q.OrderBy])
			}
			return valueLess(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
		})
	}
	return docs
}

func (s *MemoryStore) removeSub(collection string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.subs[collection]
	for i, sub := range subs {
		if sub.id == id {
			s.subs[collection] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type memorySubscription struct {
	id         int
	store      *MemoryStore
	collection string
	query      Query
	ch         chan []Document
	once       sync.Once
}

func (s *memorySubscription) Snapshots() <-chan []Document { return s.ch }

func (s *memorySubscription) Stop() {
	s.once.Do(func() {
		s.store.removeSub(s.collection, s.id)
		close(s.ch)
	})
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func valuesEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
	}
	return a == b
}

func valueLess(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	}
	return false
}
