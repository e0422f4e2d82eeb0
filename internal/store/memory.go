package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is an in-process Store used by --no-mongo mode and by tests.
// It interprets the same filter and update operators the Mongo adapter
// forwards, so the ledgers behave identically against either backend.
type MemoryStore struct {
	users      *memoryCollection
	categories *memoryCollection
	notepads   *memoryCollection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      newMemoryCollection(),
		categories: newMemoryCollection(),
		notepads:   newMemoryCollection(),
	}
}

func (s *MemoryStore) Users() Collection      { return s.users }
func (s *MemoryStore) Categories() Collection { return s.categories }
func (s *MemoryStore) Notepads() Collection   { return s.notepads }

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

type memoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]bson.M
}

func newMemoryCollection() *memoryCollection {
	return &memoryCollection{docs: make(map[string]bson.M)}
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc any) error {
	normalized, err := normalizeDoc(doc)
	if err != nil {
		return err
	}
	id, ok := normalized["_id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("store: document has no string _id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; exists {
		return ErrDuplicateKey
	}
	c.docs[id] = normalized
	c.order = append(c.order, id)
	return nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if matchesFilter(c.docs[id], filter) {
			return decodeDoc(c.docs[id], out)
		}
	}
	return ErrNoDocuments
}

func (c *memoryCollection) Find(ctx context.Context, filter bson.M, out any) error {
	slicePtr := reflect.ValueOf(out)
	if slicePtr.Kind() != reflect.Pointer || slicePtr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: Find out must be a pointer to a slice, got %T", out)
	}

	// Decode under the lock: the stored maps are mutated in place by
	// FindOneAndUpdate, so they must not be read after RUnlock.
	c.mu.RLock()
	defer c.mu.RUnlock()

	sliceVal := reflect.MakeSlice(slicePtr.Elem().Type(), 0, len(c.order))
	elemType := slicePtr.Elem().Type().Elem()
	for _, id := range c.order {
		if !matchesFilter(c.docs[id], filter) {
			continue
		}
		elem := reflect.New(elemType)
		if err := decodeDoc(c.docs[id], elem.Interface()); err != nil {
			return err
		}
		sliceVal = reflect.Append(sliceVal, elem.Elem())
	}
	slicePtr.Elem().Set(sliceVal)
	return nil
}

func (c *memoryCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.order {
		if !matchesFilter(c.docs[id], filter) {
			continue
		}
		if err := applyUpdate(c.docs[id], update); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return decodeDoc(c.docs[id], out)
	}
	return ErrNoDocuments
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, id := range c.order {
		if matchesFilter(c.docs[id], filter) {
			delete(c.docs, id)
			c.order = append(c.order[:i], c.order[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed int64
	kept := c.order[:0]
	for _, id := range c.order {
		if matchesFilter(c.docs[id], filter) {
			delete(c.docs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return removed, nil
}

// normalizeDoc round-trips a document through bson so that in-memory values
// carry the same types (bson.A, int32/int64, string) a Mongo read would.
func normalizeDoc(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: marshal document: %w", err)
	}
	var normalized bson.M
	if err := bson.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("store: unmarshal document: %w", err)
	}
	return normalized, nil
}

func decodeDoc(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshal document: %w", err)
	}
	return bson.Unmarshal(raw, out)
}

func matchesFilter(doc, filter bson.M) bool {
	for field, cond := range filter {
		val := doc[field]
		switch c := cond.(type) {
		case bson.M:
			for op, arg := range c {
				switch op {
				case "$in":
					if !listContains(asList(arg), val) {
						return false
					}
				default:
					return false
				}
			}
		default:
			if !valuesEqual(val, cond) {
				return false
			}
		}
	}
	return true
}

func applyUpdate(doc, update bson.M) error {
	for op, arg := range update {
		fields, ok := arg.(bson.M)
		if !ok {
			return fmt.Errorf("store: update operator %s expects a document, got %T", op, arg)
		}
		for field, val := range fields {
			switch op {
			case "$set":
				normalized, err := normalizeValue(val)
				if err != nil {
					return err
				}
				doc[field] = normalized
			case "$inc":
				doc[field] = asInt64(doc[field]) + asInt64(val)
			case "$addToSet":
				arr := asList(doc[field])
				if !listContains(arr, val) {
					arr = append(arr, val)
				}
				doc[field] = bson.A(arr)
			case "$pull":
				doc[field] = bson.A(listRemove(asList(doc[field]), []any{val}))
			case "$pullAll":
				doc[field] = bson.A(listRemove(asList(doc[field]), asList(val)))
			default:
				return fmt.Errorf("store: unsupported update operator %s", op)
			}
		}
	}
	return nil
}

func normalizeValue(val any) (any, error) {
	wrapped, err := normalizeDoc(bson.M{"v": val})
	if err != nil {
		return nil, err
	}
	return wrapped["v"], nil
}

func asList(v any) []any {
	switch list := v.(type) {
	case nil:
		return nil
	case bson.A:
		return []any(list)
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func listContains(list []any, val any) bool {
	for _, item := range list {
		if valuesEqual(item, val) {
			return true
		}
	}
	return false
}

func listRemove(list []any, vals []any) []any {
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if !listContains(vals, item) {
			kept = append(kept, item)
		}
	}
	return kept
}

func valuesEqual(a, b any) bool {
	if ai, ok := toInt64(a); ok {
		if bi, bok := toInt64(b); bok {
			return ai == bi
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asInt64(v any) int64 {
	n, _ := toInt64(v)
	return n
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
