package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"pgregory.net/rapid"
)

type testDoc struct {
	ID    string   `bson:"_id"`
	Owner string   `bson:"user"`
	Name  string   `bson:"name"`
	Count int      `bson:"count"`
	Refs  []string `bson:"refs"`
}

func TestMemoryCollection_InsertAndFindOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	require.NoError(t, coll.InsertOne(ctx, testDoc{ID: "a", Owner: "u1", Name: "first"}))
	require.NoError(t, coll.InsertOne(ctx, testDoc{ID: "b", Owner: "u2", Name: "second"}))

	var got testDoc
	require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "a", "user": "u1"}, &got))
	require.Equal(t, "first", got.Name)

	// Wrong owner must behave like a missing document.
	err := coll.FindOne(ctx, bson.M{"_id": "a", "user": "u2"}, &got)
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestMemoryCollection_DuplicateKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	require.NoError(t, coll.InsertOne(ctx, testDoc{ID: "a"}))
	require.ErrorIs(t, coll.InsertOne(ctx, testDoc{ID: "a"}), ErrDuplicateKey)
}

func TestMemoryCollection_FindWithInFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, coll.InsertOne(ctx, testDoc{ID: id, Owner: "u1"}))
	}

	var docs []testDoc
	require.NoError(t, coll.Find(ctx, bson.M{"_id": bson.M{"$in": []string{"a", "c", "zzz"}}}, &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "a", docs[0].ID)
	require.Equal(t, "c", docs[1].ID)

	require.NoError(t, coll.Find(ctx, bson.M{"user": "nobody"}, &docs))
	require.Empty(t, docs)
}

func TestMemoryCollection_IncAndSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	require.NoError(t, coll.InsertOne(ctx, testDoc{ID: "a", Name: "old", Count: 1}))

	var got testDoc
	require.NoError(t, coll.FindOneAndUpdate(ctx,
		bson.M{"_id": "a"},
		bson.M{"$inc": bson.M{"count": 1}, "$set": bson.M{"name": "new"}},
		&got))
	require.Equal(t, 2, got.Count)
	require.Equal(t, "new", got.Name)

	require.NoError(t, coll.FindOneAndUpdate(ctx,
		bson.M{"_id": "a"},
		bson.M{"$inc": bson.M{"count": -1}},
		&got))
	require.Equal(t, 1, got.Count)

	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": "missing"}, bson.M{"$inc": bson.M{"count": 1}}, &got)
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestMemoryCollection_DeleteManyWithIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, coll.InsertOne(ctx, testDoc{ID: id}))
	}

	removed, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": []string{"b", "d"}}})
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	var docs []testDoc
	require.NoError(t, coll.Find(ctx, bson.M{}, &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "a", docs[0].ID)
	require.Equal(t, "c", docs[1].ID)
}

// Find must not touch stored documents outside the lock: FindOneAndUpdate
// mutates them in place, and Find is on the --no-mongo serving path, not just
// under tests. Run with -race.
func TestMemoryCollection_ConcurrentFindAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	coll := newMemoryCollection()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, coll.InsertOne(ctx, testDoc{ID: id, Owner: "u1", Refs: []string{}}))
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				var docs []testDoc
				if err := coll.Find(ctx, bson.M{"user": "u1"}, &docs); err != nil {
					t.Errorf("find: %v", err)
					return
				}
				if len(docs) != 3 {
					t.Errorf("find returned %d docs, want 3", len(docs))
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				update := bson.M{"$addToSet": bson.M{"refs": "r1"}, "$inc": bson.M{"count": 1}}
				if i%2 == 1 {
					update = bson.M{"$pull": bson.M{"refs": "r1"}}
				}
				if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": "b"}, update, nil); err != nil {
					t.Errorf("update: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// Property: $addToSet and $pull give the refs array set semantics no matter
// the order or repetition of operations.
func testAddToSetPullSetSemantics(t *rapid.T) {
	ctx := context.Background()
	coll := newMemoryCollection()
	if err := coll.InsertOne(ctx, testDoc{ID: "doc", Refs: []string{}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	model := make(map[string]bool)
	ops := rapid.SliceOfN(rapid.SampledFrom([]string{"add", "pull"}), 1, 40).Draw(t, "ops")
	for i, op := range ops {
		ref := rapid.SampledFrom([]string{"r1", "r2", "r3", "r4"}).Draw(t, "ref")
		var update bson.M
		if op == "add" {
			update = bson.M{"$addToSet": bson.M{"refs": ref}}
			model[ref] = true
		} else {
			update = bson.M{"$pull": bson.M{"refs": ref}}
			delete(model, ref)
		}
		var got testDoc
		if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": "doc"}, update, &got); err != nil {
			t.Fatalf("op %d (%s %s): %v", i, op, ref, err)
		}

		if len(got.Refs) != len(model) {
			t.Fatalf("op %d: refs size %d, model size %d (%v vs %v)", i, len(got.Refs), len(model), got.Refs, model)
		}
		seen := make(map[string]bool)
		for _, r := range got.Refs {
			if seen[r] {
				t.Fatalf("op %d: duplicate ref %q in %v", i, r, got.Refs)
			}
			seen[r] = true
			if !model[r] {
				t.Fatalf("op %d: unexpected ref %q", i, r)
			}
		}
	}
}

func TestAddToSetPullSetSemantics(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testAddToSetPullSetSemantics)
}

func TestCountingStore_TracksReadsAndMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	counting := NewCountingStore(NewMemoryStore())

	users := counting.Users()
	require.NoError(t, users.InsertOne(ctx, testDoc{ID: "u1"}))

	var got testDoc
	require.NoError(t, users.FindOne(ctx, bson.M{"_id": "u1"}, &got))

	require.EqualValues(t, 1, counting.UserCalls().Reads())
	require.EqualValues(t, 1, counting.UserCalls().Mutations())
	require.EqualValues(t, 0, counting.CategoryCalls().Mutations())

	counting.UserCalls().Reset()
	require.EqualValues(t, 0, counting.UserCalls().Reads())
}
