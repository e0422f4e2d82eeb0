package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CountingStore wraps another Store and counts calls per collection.
// Tests use it to assert that a rejected operation issued zero writes.
type CountingStore struct {
	inner      Store
	users      *CountingCollection
	categories *CountingCollection
	notepads   *CountingCollection
}

// NewCountingStore wraps inner with call counters.
func NewCountingStore(inner Store) *CountingStore {
	return &CountingStore{
		inner:      inner,
		users:      &CountingCollection{inner: inner.Users()},
		categories: &CountingCollection{inner: inner.Categories()},
		notepads:   &CountingCollection{inner: inner.Notepads()},
	}
}

func (s *CountingStore) Users() Collection      { return s.users }
func (s *CountingStore) Categories() Collection { return s.categories }
func (s *CountingStore) Notepads() Collection   { return s.notepads }

func (s *CountingStore) Close(ctx context.Context) error { return s.inner.Close(ctx) }

// UserCalls returns the counters for the users collection.
func (s *CountingStore) UserCalls() *CountingCollection { return s.users }

// CategoryCalls returns the counters for the categories collection.
func (s *CountingStore) CategoryCalls() *CountingCollection { return s.categories }

// NotepadCalls returns the counters for the notepads collection.
func (s *CountingStore) NotepadCalls() *CountingCollection { return s.notepads }

// CountingCollection wraps a Collection and counts reads and mutations.
type CountingCollection struct {
	inner Collection

	mu        sync.Mutex
	reads     int64
	mutations int64
}

// Reads returns the number of FindOne/Find calls observed.
func (c *CountingCollection) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Mutations returns the number of insert/update/delete calls observed.
func (c *CountingCollection) Mutations() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutations
}

// Reset zeroes both counters.
func (c *CountingCollection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = 0
	c.mutations = 0
}

func (c *CountingCollection) countRead() {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
}

func (c *CountingCollection) countMutation() {
	c.mu.Lock()
	c.mutations++
	c.mu.Unlock()
}

func (c *CountingCollection) InsertOne(ctx context.Context, doc any) error {
	c.countMutation()
	return c.inner.InsertOne(ctx, doc)
}

func (c *CountingCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	c.countRead()
	return c.inner.FindOne(ctx, filter, out)
}

func (c *CountingCollection) Find(ctx context.Context, filter bson.M, out any) error {
	c.countRead()
	return c.inner.Find(ctx, filter, out)
}

func (c *CountingCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M, out any) error {
	c.countMutation()
	return c.inner.FindOneAndUpdate(ctx, filter, update, out)
}

func (c *CountingCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	c.countMutation()
	return c.inner.DeleteOne(ctx, filter)
}

func (c *CountingCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	c.countMutation()
	return c.inner.DeleteMany(ctx, filter)
}
