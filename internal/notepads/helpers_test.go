package notepads

import (
	"context"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simpliv/notepads/internal/ledger"
	"github.com/simpliv/notepads/internal/store"
)

// testingT is the subset of testing.TB that both *testing.T and *rapid.T
// satisfy, so the helpers below work in example and property tests alike.
type testingT interface {
	require.TestingT
	Helper()
	Fatalf(format string, args ...any)
}

// testEnv wires a Service over a counting in-memory store so tests can
// assert on both end states and store traffic.
type testEnv struct {
	counting   *store.CountingStore
	users      *ledger.UserLedger
	categories *ledger.CategoryLedger
	notepads   *ledger.NotepadLedger
	svc        *Service
}

func setupService(t testingT) *testEnv {
	t.Helper()
	counting := store.NewCountingStore(store.NewMemoryStore())
	users := ledger.NewUserLedger(counting.Users())
	categories := ledger.NewCategoryLedger(counting.Categories())
	notepads := ledger.NewNotepadLedger(counting.Notepads())
	return &testEnv{
		counting:   counting,
		users:      users,
		categories: categories,
		notepads:   notepads,
		svc:        NewService(users, categories, notepads),
	}
}

func (e *testEnv) mustCreateUser(t testingT) *ledger.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), "provider-sub", "Test User", "")
	require.NoError(t, err)
	return user
}

func (e *testEnv) mustCreateCategory(t testingT, ownerID, name string) *ledger.Category {
	t.Helper()
	cat, err := e.svc.CreateCategory(context.Background(), ownerID, name)
	require.NoError(t, err)
	return cat
}

func (e *testEnv) resetCounters() {
	e.counting.UserCalls().Reset()
	e.counting.CategoryCalls().Reset()
	e.counting.NotepadCalls().Reset()
}

// failingCollection delegates to inner until armed, then fails the named
// methods with the injected error.
type failingCollection struct {
	inner  store.Collection
	failOn map[string]error
}

func newFailingCollection(inner store.Collection) *failingCollection {
	return &failingCollection{inner: inner, failOn: make(map[string]error)}
}

func (c *failingCollection) fail(method string, err error) {
	c.failOn[method] = err
}

func (c *failingCollection) InsertOne(ctx context.Context, doc any) error {
	if err := c.failOn["InsertOne"]; err != nil {
		return err
	}
	return c.inner.InsertOne(ctx, doc)
}

func (c *failingCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	if err := c.failOn["FindOne"]; err != nil {
		return err
	}
	return c.inner.FindOne(ctx, filter, out)
}

func (c *failingCollection) Find(ctx context.Context, filter bson.M, out any) error {
	if err := c.failOn["Find"]; err != nil {
		return err
	}
	return c.inner.Find(ctx, filter, out)
}

func (c *failingCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M, out any) error {
	if err := c.failOn["FindOneAndUpdate"]; err != nil {
		return err
	}
	return c.inner.FindOneAndUpdate(ctx, filter, update, out)
}

func (c *failingCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	if err := c.failOn["DeleteOne"]; err != nil {
		return 0, err
	}
	return c.inner.DeleteOne(ctx, filter)
}

func (c *failingCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	if err := c.failOn["DeleteMany"]; err != nil {
		return 0, err
	}
	return c.inner.DeleteMany(ctx, filter)
}

// faultStore lets each collection be wrapped for failure injection.
type faultStore struct {
	users      *failingCollection
	categories *failingCollection
	notepads   *failingCollection
}

func newFaultStore() *faultStore {
	mem := store.NewMemoryStore()
	return &faultStore{
		users:      newFailingCollection(mem.Users()),
		categories: newFailingCollection(mem.Categories()),
		notepads:   newFailingCollection(mem.Notepads()),
	}
}

func (s *faultStore) service() (*Service, *ledger.UserLedger, *ledger.CategoryLedger, *ledger.NotepadLedger) {
	users := ledger.NewUserLedger(s.users)
	categories := ledger.NewCategoryLedger(s.categories)
	notepads := ledger.NewNotepadLedger(s.notepads)
	return NewService(users, categories, notepads), users, categories, notepads
}
